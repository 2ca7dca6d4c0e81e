package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// dealRequest mirrors the dealbot API request model.
type dealRequest struct {
	Text     string `json:"text"`
	UserID   int64  `json:"user_id"`
	Advanced bool   `json:"advanced,omitempty"`
}

// dealResponse mirrors the dealbot API response model.
type dealResponse struct {
	Success bool `json:"success"`
	Results []struct {
		URL         string `json:"url"`
		Status      string `json:"status"`
		Message     string `json:"message"`
		CacheStatus string `json:"cache_status"`
		Product     *struct {
			CleanTitle     string   `json:"clean_title"`
			Brand          string   `json:"brand"`
			Category       string   `json:"category"`
			PriceNumeric   float64  `json:"price_numeric"`
			FormattedPrice string   `json:"formatted_price"`
			QualityScore   int      `json:"quality_score"`
			Images         []string `json:"images"`
		} `json:"product"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"results"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// mcpUserID identifies this sidecar to the per-user rate limiter.
const mcpUserID = 1

func main() {
	apiURL := os.Getenv("DEALBOT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("DEALBOT_API_KEY")

	s := server.NewMCPServer(
		"dealbot",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	formatDealTool := mcp.NewTool("format_deal",
		mcp.WithDescription("Extract product links from a text message, scrape each product page, and return formatted deal messages with title, brand, price and quality score."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text containing one or more product links (Amazon, Flipkart, Meesho, Myntra, Ajio, Snapdeal, Wishlink, or shortened links)"),
		),
		mcp.WithBoolean("advanced",
			mcp.Description("Force a fresh scrape (bypass cache) and run the full stock check (default: false)"),
		),
	)
	s.AddTool(formatDealTool, handleFormatDeal(apiURL, apiKey))

	resolveLinkTool := mcp.NewTool("resolve_link",
		mcp.WithDescription("Resolve a shortened or affiliate product link to its final store URL and report the detected platform, without scraping the product page."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The link to resolve"),
		),
	)
	s.AddTool(resolveLinkTool, handleResolveLink(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleFormatDeal(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError("text is required"), nil
		}
		advanced := request.GetBool("advanced", false)

		body, err := postDeal(ctx, client, apiURL, apiKey, dealRequest{
			Text:     text,
			UserID:   mcpUserID,
			Advanced: advanced,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp dealResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if resp.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %s", resp.Error.Code, resp.Error.Message)), nil
		}
		if len(resp.Results) == 0 {
			return mcp.NewToolResultText("No product links found in the text."), nil
		}

		var out strings.Builder
		for i, result := range resp.Results {
			if i > 0 {
				out.WriteString("\n\n---\n\n")
			}
			out.WriteString(result.Message)
			if result.Error != nil {
				out.WriteString(fmt.Sprintf(" (%s)", result.Error.Code))
			}
		}
		return mcp.NewToolResultText(out.String()), nil
	}
}

func handleResolveLink(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		// Resolution without scraping is not a separate endpoint; the deal
		// endpoint reports the resolution outcome per link even when the
		// scrape fails, so the per-link result carries what we need.
		body, err := postDeal(ctx, client, apiURL, apiKey, dealRequest{
			Text:   url,
			UserID: mcpUserID,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp dealResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if resp.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %s", resp.Error.Code, resp.Error.Message)), nil
		}
		if len(resp.Results) == 0 {
			return mcp.NewToolResultText("Not a recognizable link."), nil
		}

		result := resp.Results[0]
		if result.Product != nil {
			return mcp.NewToolResultText(fmt.Sprintf("Resolved: %s\nTitle: %s\nPrice: %s",
				result.URL, result.Product.CleanTitle, result.Product.FormattedPrice)), nil
		}
		if result.Error != nil {
			return mcp.NewToolResultText(fmt.Sprintf("Resolved: %s\nStatus: %s (%s)",
				result.URL, result.Status, result.Error.Code)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Resolved: %s\nStatus: %s", result.URL, result.Status)), nil
	}
}

// postDeal sends a POST to the deal endpoint and returns the response body.
func postDeal(ctx context.Context, client *http.Client, apiURL, apiKey string, payload dealRequest) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/deal", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

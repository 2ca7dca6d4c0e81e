// Package pipeline orchestrates the per-message deal flow: link extraction,
// rate-limit admission, and the per-link cache/resolve/scrape/parse sequence.
package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/use-deal/dealbot/cache"
	"github.com/use-deal/dealbot/config"
	"github.com/use-deal/dealbot/models"
	"github.com/use-deal/dealbot/ratelimit"
)

// Resolver follows a raw link to its final URL and platform.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) models.ResolvedURL
}

// Scraper extracts raw product data from a resolved URL.
type Scraper interface {
	Scrape(ctx context.Context, url string, platform models.Platform, fullStockScan bool) (*models.RawExtraction, error)
}

// Parser normalizes a raw extraction into a rendered product.
type Parser interface {
	Parse(raw *models.RawExtraction) *models.ParsedProduct
}

// ImageProcessor prepares transport-ready image payloads.
type ImageProcessor interface {
	Prepare(ctx context.Context, urls []string) [][]byte
}

// Session carries per-request caller state through the pipeline.
type Session struct {
	UserID int64

	// Advanced bypasses the cache read and widens the stock check.
	Advanced bool

	// IncludeImages requests transcoded image payloads on success.
	IncludeImages bool
}

// Pipeline wires the deal-processing stages together. Links within one
// message are processed sequentially; concurrent messages share only the
// cache and the rate limiter, which serialize internally.
type Pipeline struct {
	cfg      config.PipelineConfig
	resolver Resolver
	scraper  Scraper
	parser   Parser
	images   ImageProcessor
	cache    *cache.Cache
	limiter  *ratelimit.Limiter

	// sleep is injectable so retry tests run without real delays.
	sleep func(time.Duration)
}

// New creates a Pipeline.
func New(cfg config.PipelineConfig, resolver Resolver, scraper Scraper, parser Parser, images ImageProcessor, productCache *cache.Cache, limiter *ratelimit.Limiter) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		resolver: resolver,
		scraper:  scraper,
		parser:   parser,
		images:   images,
		cache:    productCache,
		limiter:  limiter,
		sleep:    time.Sleep,
	}
}

// Process runs the whole flow for one inbound message. A text with no links
// is a no-op with empty results. Messages over the link ceiling, or from a
// rate-limited user, fail as a whole without any scraping. Otherwise each
// link is processed independently and in source order; one link's failure
// never aborts its siblings.
func (p *Pipeline) Process(ctx context.Context, session Session, text string) *models.DealResponse {
	links := ExtractLinks(text)
	if len(links) == 0 {
		return &models.DealResponse{Success: true}
	}

	if !p.limiter.Allow(session.UserID) {
		slog.Info("request rate limited", "user_id", session.UserID)
		return &models.DealResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeRateLimited,
				Message: "Too many requests. Please wait a minute and try again.",
			},
		}
	}

	if len(links) > p.cfg.MaxLinks {
		return &models.DealResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "Too many links in one message. Send up to " + strconv.Itoa(p.cfg.MaxLinks) + " links at a time.",
			},
		}
	}

	response := &models.DealResponse{Success: true}
	for _, link := range links {
		result := p.processLink(ctx, session, link)
		if result.Status == models.LinkStatusFailed {
			response.Success = false
		}
		response.Results = append(response.Results, result)
	}
	return response
}

// processLink runs one link through cache check, resolution, scraping with
// bounded retries, parsing, stock check, cache store and response assembly.
func (p *Pipeline) processLink(ctx context.Context, session Session, link string) models.LinkResult {
	if !session.Advanced {
		if product, ok := p.cache.Get(link); ok {
			slog.Debug("cache hit", "link", link)
			return p.respond(ctx, session, link, product, "hit")
		}
	}

	resolved := p.resolver.Resolve(ctx, link)
	if resolved.Err != nil {
		return failedResult(link, resolved.Err)
	}
	if resolved.Platform == models.PlatformNone {
		return failedResult(link, models.NewDealError(models.ErrCodeInvalidLink, "unrecognized store", nil))
	}

	raw, err := p.scrapeWithRetries(ctx, session, resolved)
	if err != nil {
		return failedResult(link, models.AsDealError(err))
	}

	product := p.parser.Parse(raw)
	if product == nil {
		return failedResult(link, models.NewDealError(models.ErrCodeExtractionFailed, "no usable product data", nil))
	}

	if product.OutOfStock {
		return failedResult(link, models.NewDealError(models.ErrCodeOutOfStock, "product is out of stock", nil))
	}

	p.cache.Set(link, product)

	cacheStatus := "miss"
	if session.Advanced {
		cacheStatus = ""
	}
	return p.respond(ctx, session, link, product, cacheStatus)
}

// scrapeWithRetries retries empty scrapes up to the configured attempt count
// with a fixed delay between attempts.
func (p *Pipeline) scrapeWithRetries(ctx context.Context, session Session, resolved models.ResolvedURL) (*models.RawExtraction, error) {
	var lastErr error
	for attempt := 0; attempt < p.cfg.ScrapeAttempts; attempt++ {
		if attempt > 0 {
			p.sleep(p.cfg.ScrapeAttemptDelay)
		}
		raw, err := p.scraper.Scrape(ctx, resolved.FinalURL, resolved.Platform, session.Advanced)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		// Network errors burn their own retry budget inside the fetcher;
		// another pipeline-level attempt would triple the wait for nothing.
		if models.AsDealError(err).Code == models.ErrCodeNetwork {
			break
		}
	}
	return nil, lastErr
}

// respond assembles the user-facing result for a successful product.
func (p *Pipeline) respond(ctx context.Context, session Session, link string, product *models.ParsedProduct, cacheStatus string) models.LinkResult {
	result := models.LinkResult{
		URL:         link,
		Status:      models.LinkStatusOK,
		Message:     p.finalMessage(product),
		CacheStatus: cacheStatus,
		Product:     product,
	}

	if session.IncludeImages && len(product.Images) > 0 && p.images != nil {
		result.Images = p.images.Prepare(ctx, product.Images)
	}
	return result
}

// failedResult maps an internal error to its user-facing category text.
func failedResult(link string, err *models.DealError) models.LinkResult {
	slog.Info("link failed", "link", link, "code", err.Code, "error", err)
	return models.LinkResult{
		URL:     link,
		Status:  models.LinkStatusFailed,
		Message: userFacingText(err.Code),
		Error:   err.ToDetail(),
	}
}

func userFacingText(code string) string {
	switch code {
	case models.ErrCodeInvalidLink:
		return "Unsupported or invalid product link."
	case models.ErrCodeExtractionFailed:
		return "Could not extract product details from this page."
	case models.ErrCodeOutOfStock:
		return "This product is currently out of stock."
	case models.ErrCodeNetwork:
		return "Could not reach the store. Please try again later."
	case models.ErrCodeRateLimited:
		return "Too many requests. Please slow down."
	default:
		return "Something went wrong while processing this link."
	}
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-deal/dealbot/cache"
	"github.com/use-deal/dealbot/config"
	"github.com/use-deal/dealbot/models"
	"github.com/use-deal/dealbot/pipeline"
	"github.com/use-deal/dealbot/ratelimit"
)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, rawURL string) models.ResolvedURL {
	return models.ResolvedURL{OriginalURL: rawURL, FinalURL: rawURL, Platform: models.PlatformAmazon}
}

type stubScraper struct{}

func (stubScraper) Scrape(_ context.Context, url string, platform models.Platform, _ bool) (*models.RawExtraction, error) {
	return &models.RawExtraction{Platform: platform, URL: url, Title: "Cotton Kurta Set Blue", Price: "₹799"}, nil
}

type stubParser struct{}

func (stubParser) Parse(raw *models.RawExtraction) *models.ParsedProduct {
	return &models.ParsedProduct{
		Platform:         raw.Platform,
		URL:              raw.URL,
		CleanTitle:       "Cotton Kurta Set Blue",
		QualityScore:     60,
		FormattedMessage: "Cotton Kurta Set Blue " + raw.URL,
	}
}

func testRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	productCache := cache.NewWithClock(5*time.Minute, 100, time.Now)
	userLimiter := ratelimit.NewWithClock(config.RateLimitConfig{Window: time.Minute, MaxRequests: 100}, time.Now)
	apiLimiter := ratelimit.NewWithClock(cfg.RateLimit, time.Now)

	p := pipeline.New(cfg.Pipeline, stubResolver{}, stubScraper{}, stubParser{}, nil, productCache, userLimiter)
	return NewRouter(p, productCache, apiLimiter, cfg, time.Now())
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		RateLimit: config.RateLimitConfig{Window: time.Minute, MaxRequests: 50},
		Pipeline: config.PipelineConfig{
			MaxLinks:           5,
			ScrapeAttempts:     1,
			ScrapeAttemptDelay: 0,
			DefaultPin:         "110001",
			MaxMessageLength:   4096,
		},
	}
}

func postDeal(t *testing.T, router http.Handler, payload models.DealRequest, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deal", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func TestDealEndpoint(t *testing.T) {
	router := testRouter(t, testConfig())

	w := postDeal(t, router, models.DealRequest{
		Text:   "check https://www.amazon.in/dp/B0ABCDEFGH out",
		UserID: 42,
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.DealResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, models.LinkStatusOK, resp.Results[0].Status)
	assert.Contains(t, resp.Results[0].Message, "Cotton Kurta Set Blue")
}

func TestDealEndpointValidation(t *testing.T) {
	router := testRouter(t, testConfig())

	// Missing user_id fails binding.
	w := postDeal(t, router, models.DealRequest{Text: "https://x"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDealEndpointRateLimitStatus(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Window: time.Minute, MaxRequests: 1}
	router := testRouter(t, cfg)

	payload := models.DealRequest{Text: "https://www.amazon.in/dp/B0ABCDEFGH", UserID: 1}
	first := postDeal(t, router, payload, nil)
	require.Equal(t, http.StatusOK, first.Code)

	second := postDeal(t, router, payload, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestAuthRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret-key"}}
	router := testRouter(t, cfg)

	payload := models.DealRequest{Text: "https://www.amazon.in/dp/B0ABCDEFGH", UserID: 1}

	missing := postDeal(t, router, payload, nil)
	assert.Equal(t, http.StatusUnauthorized, missing.Code)

	wrong := postDeal(t, router, payload, map[string]string{"X-API-Key": "nope"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)

	header := postDeal(t, router, payload, map[string]string{"X-API-Key": "secret-key"})
	assert.Equal(t, http.StatusOK, header.Code)

	bearer := postDeal(t, router, payload, map[string]string{"Authorization": "Bearer secret-key"})
	assert.Equal(t, http.StatusOK, bearer.Code)

	// Health stays open without a key.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

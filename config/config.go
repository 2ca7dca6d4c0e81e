package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Pipeline  PipelineConfig
	Images    ImagesConfig
	Auth      AuthConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls outbound HTTP behavior for the resolver and scraper.
type FetchConfig struct {
	// Timeout is the per-request socket/read deadline.
	Timeout time.Duration // default: 10s

	// MaxRetries is the fetch retry ceiling per page.
	MaxRetries int // default: 3

	// RetryBaseDelay is the linear backoff unit between retries
	// (attempt N waits N * RetryBaseDelay).
	RetryBaseDelay time.Duration // default: 1s

	// RateLimitedDelay is the fixed wait after an HTTP 429.
	RateLimitedDelay time.Duration // default: 5s

	// HostRPS is the sustained outbound request rate per target host.
	HostRPS float64 // default: 2

	// HostBurst is the outbound burst size per target host.
	HostBurst int // default: 4
}

// CacheConfig controls the product cache.
type CacheConfig struct {
	// TTL is how long a cached product stays fresh.
	TTL time.Duration // default: 5m

	// MaxEntries is the capacity bound; oldest entries are evicted first.
	MaxEntries int // default: 1000
}

// RateLimitConfig controls per-user sliding-window admission.
type RateLimitConfig struct {
	// Window is the sliding window length.
	Window time.Duration // default: 60s

	// MaxRequests is the quota within one window.
	MaxRequests int // default: 10
}

// PipelineConfig controls per-message orchestration.
type PipelineConfig struct {
	// MaxLinks is the per-message link ceiling; above it the whole
	// message is rejected with a single notice and nothing is scraped.
	MaxLinks int // default: 5

	// ScrapeAttempts is the empty-result retry ceiling per link.
	ScrapeAttempts int // default: 3

	// ScrapeAttemptDelay is the pause between scrape attempts.
	ScrapeAttemptDelay time.Duration // default: 1s

	// DefaultPin is the pin-code line appended to low-priced deals.
	DefaultPin string // default: "110001"

	// MaxMessageLength truncates rendered text (transport limit).
	MaxMessageLength int // default: 4096

	// Brands is the ordered brand dictionary. Order defines first-match-wins
	// priority for brand detection, so keep it a list, never a set.
	Brands []string
}

// ImagesConfig controls product-image preparation for transport.
type ImagesConfig struct {
	// MaxImages is the number of payloads prepared per deal.
	MaxImages int // default: 2

	// MaxDimension bounds the longest side in pixels.
	MaxDimension int // default: 1280

	// JPEGQuality is the transcode quality (1-100).
	JPEGQuality int // default: 85
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultBrands is the built-in brand dictionary, in priority order.
// Canonical casing is preserved when titles are re-cased.
var DefaultBrands = []string{
	"H&M", "Max", "Pantaloons", "United Colors Of Benetton",
	"U.S. Polo Assn.", "Mothercare", "HRX", "Philips", "LOreal",
	"Bath & Body Works", "THE BODY SHOP", "Biotique", "Mamaearth",
	"MCaffeine", "Nivea", "Lotus Herbals", "KAMA AYURVEDA",
	"M.A.C", "Forest Essentials", "Nike", "Adidas",
	"Puma", "Reebok", "Levi's", "Zara", "Forever 21",
	"Tokyo Talkies", "Roadster", "Here&Now", "DressBerry",
	"Mast & Harbour", "Anouk", "Sangria", "Libas", "Vishudh",
	"Lakme", "Maybelline", "Revlon", "Colorbar", "Nykaa",
	"Sugar", "Faces", "Chambor", "Blue Heaven", "Insight",
	"Home Centre", "Urban Ladder", "Pepperfry", "Fabindia", "Westside",
	"boAt", "Noise", "Realme", "Redmi", "OnePlus", "Samsung", "Apple",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("DEALBOT_HOST", "0.0.0.0"),
			Port: envIntOr("DEALBOT_PORT", 8080),
			Mode: envOr("DEALBOT_MODE", "release"),
		},
		Fetch: FetchConfig{
			Timeout:          envDurationOr("DEALBOT_FETCH_TIMEOUT", 10*time.Second),
			MaxRetries:       envIntOr("DEALBOT_MAX_RETRIES", 3),
			RetryBaseDelay:   envDurationOr("DEALBOT_RETRY_BASE_DELAY", time.Second),
			RateLimitedDelay: envDurationOr("DEALBOT_429_DELAY", 5*time.Second),
			HostRPS:          envFloatOr("DEALBOT_HOST_RPS", 2.0),
			HostBurst:        envIntOr("DEALBOT_HOST_BURST", 4),
		},
		Cache: CacheConfig{
			TTL:        envDurationOr("DEALBOT_CACHE_TTL", 5*time.Minute),
			MaxEntries: envIntOr("DEALBOT_CACHE_MAX_ENTRIES", 1000),
		},
		RateLimit: RateLimitConfig{
			Window:      envDurationOr("DEALBOT_RATE_WINDOW", time.Minute),
			MaxRequests: envIntOr("DEALBOT_RATE_MAX_REQUESTS", 10),
		},
		Pipeline: PipelineConfig{
			MaxLinks:           envIntOr("DEALBOT_MAX_LINKS", 5),
			ScrapeAttempts:     envIntOr("DEALBOT_SCRAPE_ATTEMPTS", 3),
			ScrapeAttemptDelay: envDurationOr("DEALBOT_SCRAPE_ATTEMPT_DELAY", time.Second),
			DefaultPin:         envOr("DEALBOT_DEFAULT_PIN", "110001"),
			MaxMessageLength:   envIntOr("DEALBOT_MAX_MESSAGE_LENGTH", 4096),
			Brands:             envSliceOr("DEALBOT_BRANDS", DefaultBrands),
		},
		Images: ImagesConfig{
			MaxImages:    envIntOr("DEALBOT_MAX_IMAGES", 2),
			MaxDimension: envIntOr("DEALBOT_IMAGE_MAX_DIMENSION", 1280),
			JPEGQuality:  envIntOr("DEALBOT_JPEG_QUALITY", 85),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("DEALBOT_AUTH_ENABLED", false),
			APIKeys: envSliceOr("DEALBOT_API_KEYS", nil),
		},
		Log: LogConfig{
			Level:  envOr("DEALBOT_LOG_LEVEL", "info"),
			Format: envOr("DEALBOT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

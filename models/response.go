package models

// LinkStatus is the terminal state of one link's pipeline run.
type LinkStatus string

const (
	LinkStatusOK     LinkStatus = "ok"
	LinkStatusFailed LinkStatus = "failed"
)

// LinkResult is the per-link outcome inside a DealResponse. A failed link
// carries Error and a user-facing Message; a successful one carries the
// rendered deal text and any prepared images.
type LinkResult struct {
	// URL is the link exactly as it appeared in the source text.
	URL string `json:"url"`

	Status LinkStatus `json:"status"`

	// Message is the user-facing text: the rendered deal on success, the
	// mapped error category text on failure. Never empty.
	Message string `json:"message"`

	// CacheStatus indicates whether the result was served from cache.
	// Values: "hit", "miss", or empty (advanced mode bypasses the cache).
	CacheStatus string `json:"cache_status,omitempty"`

	// Product is the parsed deal, present on success.
	Product *ParsedProduct `json:"product,omitempty"`

	// Images holds up to 2 transcoded JPEG payloads when requested.
	Images [][]byte `json:"images,omitempty"`

	// Error is populated only when Status is "failed".
	Error *ErrorDetail `json:"error,omitempty"`
}

// DealResponse is the response for POST /api/v1/deal.
type DealResponse struct {
	Success bool `json:"success"`

	// Results holds one entry per processed link, in source-text order.
	// Empty when the message contained no links.
	Results []LinkResult `json:"results"`

	// Error is populated for whole-message failures (rate limited,
	// too many links, invalid input).
	Error *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"` // "healthy"
	Uptime    string `json:"uptime"`
	CacheSize int    `json:"cache_size"`
	Version   string `json:"version"`
}

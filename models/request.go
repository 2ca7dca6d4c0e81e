package models

// DealRequest is the payload for POST /api/v1/deal.
type DealRequest struct {
	// Text is the message body (or caption) containing zero or more
	// product links. Required.
	Text string `json:"text" binding:"required"`

	// UserID identifies the sender for rate limiting. Required.
	UserID int64 `json:"user_id" binding:"required"`

	// Advanced forces a fresh scrape for every link, bypassing the cache,
	// and enables the stock check. Default: false.
	Advanced bool `json:"advanced,omitempty"`

	// IncludeImages requests up to 2 transcoded JPEG payloads per link.
	// Default: false (text only).
	IncludeImages bool `json:"include_images,omitempty"`
}

package models

import "time"

// Platform identifies a supported e-commerce site.
type Platform string

const (
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
	PlatformMeesho   Platform = "meesho"
	PlatformMyntra   Platform = "myntra"
	PlatformAjio     Platform = "ajio"
	PlatformSnapdeal Platform = "snapdeal"
	PlatformWishlink Platform = "wishlink"
	PlatformNone     Platform = ""
)

// ExtractionMethod records which strategy ultimately produced a RawExtraction.
type ExtractionMethod string

const (
	MethodSelectors ExtractionMethod = "selectors"
	MethodJSONLD    ExtractionMethod = "json_ld"
	MethodMicrodata ExtractionMethod = "microdata"
)

// Category is a coarse product classification derived from the cleaned title.
type Category string

const (
	CategoryClothing    Category = "clothing"
	CategoryFootwear    Category = "footwear"
	CategoryBeauty      Category = "beauty"
	CategoryAccessories Category = "accessories"
	CategoryHome        Category = "home"
	CategoryElectronics Category = "electronics"
	CategoryNone        Category = ""
)

// ResolvedURL is the outcome of one URL resolution call.
// When Err is non-nil, Platform and ProductID must not be trusted.
type ResolvedURL struct {
	OriginalURL string
	FinalURL    string
	Platform    Platform
	ProductID   string
	Err         *DealError
}

// RawExtraction is the product data pulled out of one scraped page.
// It is immutable after the scraper returns it.
type RawExtraction struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`

	// Title is empty when no selector or structured-data fallback matched.
	Title string `json:"title,omitempty"`

	// Price is the raw price string exactly as found on the page.
	Price string `json:"price,omitempty"`

	Brand string `json:"brand,omitempty"`

	// Images holds up to 3 deduplicated absolute image URLs, in discovery order.
	Images []string `json:"images,omitempty"`

	OutOfStock bool `json:"out_of_stock"`

	// CategoryHint is breadcrumb text from the page, when present.
	CategoryHint string `json:"category_hint,omitempty"`

	Method    ExtractionMethod `json:"extraction_method"`
	ScrapedAt time.Time        `json:"scraped_at"`
}

// TemplateName identifies which message template rendered a product.
type TemplateName string

const (
	TemplateSize     TemplateName = "size"
	TemplateColor    TemplateName = "color"
	TemplatePack     TemplateName = "pack"
	TemplateStandard TemplateName = "standard"
	TemplateNoPrice  TemplateName = "no_price"
	TemplateFallback TemplateName = "fallback"
)

// ParsedProduct is the fully normalized deal produced by the parser from one
// RawExtraction. FormattedMessage is never empty: when computed content falls
// under 5 characters a platform+url fallback string is substituted.
type ParsedProduct struct {
	Platform   Platform `json:"platform"`
	URL        string   `json:"url"`
	RawTitle   string   `json:"raw_title"`
	OutOfStock bool     `json:"out_of_stock"`

	CleanTitle string `json:"clean_title"`

	// Sizes holds up to 3 case-normalized size tokens in extraction order.
	Sizes []string `json:"sizes,omitempty"`

	// Quantity is the "Npcs" annotation for multi-packs; empty for singles.
	Quantity string `json:"quantity,omitempty"`
	PackSize int    `json:"pack_size,omitempty"`

	Color string `json:"color,omitempty"`

	// Brand is the canonical cased form from the brand dictionary.
	Brand    string   `json:"brand,omitempty"`
	Category Category `json:"category,omitempty"`

	Price          string  `json:"price,omitempty"`
	PriceNumeric   float64 `json:"price_numeric,omitempty"`
	HasPrice       bool    `json:"has_price"`
	FormattedPrice string  `json:"formatted_price,omitempty"`

	Images []string `json:"images,omitempty"`

	// QualityScore grades extraction completeness on a 0-100 scale.
	QualityScore int `json:"quality_score"`

	TemplateUsed     TemplateName `json:"template_used"`
	DisplayTitle     string       `json:"display_title"`
	FormattedMessage string       `json:"formatted_message"`
}

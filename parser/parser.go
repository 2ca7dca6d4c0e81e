// Package parser normalizes raw scraped product data into a formatted deal
// message: title cleaning, attribute extraction, price parsing, quality
// scoring and template rendering.
package parser

import (
	"log/slog"
	"strings"

	"github.com/use-deal/dealbot/models"
)

// Parser turns RawExtractions into ParsedProducts. Stateless after
// construction and safe for concurrent use.
type Parser struct {
	// brands is the ordered dictionary; earlier entries win detection ties.
	brands []string

	// brandLookup maps lowercased single-word brand names to their
	// canonical casing, for title re-casing.
	brandLookup map[string]string
}

// New creates a Parser over the given ordered brand dictionary.
func New(brands []string) *Parser {
	lookup := make(map[string]string, len(brands))
	for _, brand := range brands {
		if !strings.Contains(brand, " ") {
			lookup[strings.ToLower(brand)] = brand
		}
	}
	return &Parser{brands: brands, brandLookup: lookup}
}

// Parse converts one raw extraction into a fully rendered product. Returns
// nil only when the extraction carries no usable title.
func (p *Parser) Parse(raw *models.RawExtraction) *models.ParsedProduct {
	if raw == nil || strings.TrimSpace(raw.Title) == "" {
		return nil
	}

	product := &models.ParsedProduct{
		Platform:   raw.Platform,
		URL:        raw.URL,
		RawTitle:   raw.Title,
		OutOfStock: raw.OutOfStock,
		Images:     raw.Images,
	}

	product.CleanTitle = p.cleanTitle(raw.Title)

	// Attribute extraction works on the raw title; cleaning removes the
	// very tokens these matchers look for.
	product.Sizes = extractSizes(raw.Title)
	product.Quantity, product.PackSize = extractQuantity(raw.Title)
	product.Color = extractColor(raw.Title)

	product.Brand = p.detectBrand(raw.Brand, product.CleanTitle)
	product.Category = models.Category(detectCategory(product.CleanTitle))

	product.Price = raw.Price
	product.PriceNumeric, product.FormattedPrice = parsePrice(raw.Price)
	product.HasPrice = product.PriceNumeric > 0

	product.QualityScore = scoreQuality(product)
	render(product)

	slog.Debug("product parsed",
		"title", product.CleanTitle,
		"brand", product.Brand,
		"quality", product.QualityScore,
		"template", string(product.TemplateUsed),
	)
	return product
}

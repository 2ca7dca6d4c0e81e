// Package scraper fetches product pages and extracts raw product data using
// per-platform CSS selector ladders, with JSON-LD and microdata fallbacks.
package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-deal/dealbot/config"
	"github.com/use-deal/dealbot/models"
)

// maxExtractedImages caps how many image URLs one extraction keeps.
const maxExtractedImages = 3

// Scraper turns a resolved product URL into a RawExtraction. Safe for
// concurrent use; all per-request state lives on the stack.
type Scraper struct {
	fetcher *fetcher
	now     func() time.Time
}

// New creates a Scraper with the given fetch configuration.
func New(cfg config.FetchConfig) *Scraper {
	return &Scraper{
		fetcher: newFetcher(cfg),
		now:     time.Now,
	}
}

// Fetch downloads an arbitrary URL through the shared retrying fetcher,
// subject to the same per-host politeness limits as page scrapes.
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	return s.fetcher.fetch(ctx, url)
}

// Scrape fetches the page and runs the extraction ladder. fullStockScan
// widens the availability check to the whole page body, used for requests
// where stock accuracy matters more than speed.
//
// Returns EXTRACTION_FAILED when no strategy produced a usable title, or
// NETWORK_ERROR when the page could not be fetched at all. A missing price is
// logged but not fatal.
func (s *Scraper) Scrape(ctx context.Context, pageURL string, platform models.Platform, fullStockScan bool) (*models.RawExtraction, error) {
	body, err := s.fetcher.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, models.NewDealError(models.ErrCodeExtractionFailed, "failed to parse page HTML", err)
	}

	raw := s.extract(doc, pageURL, platform, fullStockScan)

	if len(raw.Title) < 5 {
		slog.Warn("extraction produced no usable title", "url", pageURL, "platform", string(platform))
		return nil, models.NewDealError(models.ErrCodeExtractionFailed, "could not extract product data from page", nil)
	}
	if raw.Price == "" {
		slog.Warn("product has no price information", "url", pageURL, "platform", string(platform))
	}

	slog.Info("product scraped",
		"url", pageURL,
		"platform", string(platform),
		"method", string(raw.Method),
		"title", raw.Title,
	)
	return raw, nil
}

// extract runs the selector ladders, then fills gaps from JSON-LD and
// microdata in that order. The recorded method is the last strategy that
// contributed a field.
func (s *Scraper) extract(doc *goquery.Document, pageURL string, platform models.Platform, fullStockScan bool) *models.RawExtraction {
	ladders := selectorsFor(platform)

	raw := &models.RawExtraction{
		Platform:     platform,
		URL:          pageURL,
		Title:        extractTitle(doc, ladders.title),
		Price:        extractPrice(doc, ladders.price),
		Brand:        extractBrand(doc, ladders.brand),
		Images:       extractImages(doc, ladders.images, pageURL, maxExtractedImages),
		OutOfStock:   checkAvailability(doc, ladders.availability, fullStockScan),
		CategoryHint: extractCategoryHint(doc),
		Method:       models.MethodSelectors,
		ScrapedAt:    s.now(),
	}

	if raw.Title == "" || raw.Price == "" {
		if data := extractJSONLD(doc, maxExtractedImages); data != nil {
			mergeStructured(raw, data)
			raw.Method = models.MethodJSONLD
		}
	}
	if raw.Title == "" || raw.Price == "" {
		if data := extractMicrodata(doc); data != nil {
			mergeStructured(raw, data)
			raw.Method = models.MethodMicrodata
		}
	}

	return raw
}

// mergeStructured overlays structured-data fields onto the extraction,
// keeping whatever the selector ladders already found.
func mergeStructured(raw *models.RawExtraction, data *structuredData) {
	if raw.Title == "" {
		raw.Title = data.Title
	}
	if raw.Price == "" {
		raw.Price = data.Price
	}
	if raw.Brand == "" {
		raw.Brand = data.Brand
	}
	if len(raw.Images) == 0 {
		raw.Images = data.Images
	}
}

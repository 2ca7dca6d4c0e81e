package scraper

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// structuredData is the subset of product fields recoverable from schema.org
// annotations when the selector ladders come up empty.
type structuredData struct {
	Title  string
	Brand  string
	Price  string
	Images []string
}

// jsonLDProduct mirrors the schema.org Product shape loosely. Fields that
// sites publish as either scalars or objects use json.RawMessage and get
// decoded adaptively.
type jsonLDProduct struct {
	Type   string          `json:"@type"`
	Name   string          `json:"name"`
	Brand  json.RawMessage `json:"brand"`
	Offers json.RawMessage `json:"offers"`
	Image  json.RawMessage `json:"image"`
}

type jsonLDOffer struct {
	Price json.RawMessage `json:"price"`
}

// extractJSONLD scans <script type="application/ld+json"> blocks for a
// Product node. Returns nil when no usable node is found.
func extractJSONLD(doc *goquery.Document, maxImages int) *structuredData {
	var result *structuredData

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}

		var products []jsonLDProduct
		if strings.HasPrefix(raw, "[") {
			if err := json.Unmarshal([]byte(raw), &products); err != nil {
				return true
			}
		} else {
			var single jsonLDProduct
			if err := json.Unmarshal([]byte(raw), &single); err != nil {
				return true
			}
			products = []jsonLDProduct{single}
		}

		for _, p := range products {
			if !strings.EqualFold(p.Type, "Product") {
				continue
			}
			data := &structuredData{
				Title:  cleanText(p.Name),
				Brand:  decodeBrand(p.Brand),
				Price:  decodeOfferPrice(p.Offers),
				Images: decodeImages(p.Image, maxImages),
			}
			if data.Title != "" || data.Price != "" {
				result = data
				return false
			}
		}
		return true
	})

	return result
}

// decodeBrand handles both `"brand": "Nike"` and `"brand": {"name": "Nike"}`.
func decodeBrand(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return cleanText(s)
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return cleanText(obj.Name)
	}
	return ""
}

// decodeOfferPrice handles a single offer object, an offer array, and price
// published as either a JSON number or a string.
func decodeOfferPrice(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var offers []jsonLDOffer
	if err := json.Unmarshal(raw, &offers); err != nil {
		var single jsonLDOffer
		if err := json.Unmarshal(raw, &single); err != nil {
			return ""
		}
		offers = []jsonLDOffer{single}
	}
	for _, offer := range offers {
		if p := decodePrice(offer.Price); p != "" {
			return p
		}
	}
	return ""
}

func decodePrice(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return strconv.FormatFloat(num, 'f', -1, 64)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return cleanText(s)
	}
	return ""
}

func decodeImages(raw json.RawMessage, maxImages int) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		list = []string{single}
	}
	if len(list) > maxImages {
		list = list[:maxImages]
	}
	return list
}

// extractMicrodata pulls name, brand and price from the first element carrying
// a schema.org Product itemtype. Price falls back to the content attribute
// when the element has no text.
func extractMicrodata(doc *goquery.Document) *structuredData {
	product := doc.Find(`[itemtype*="Product"]`).First()
	if product.Length() == 0 {
		return nil
	}

	data := &structuredData{
		Title: cleanText(product.Find(`[itemprop="name"]`).First().Text()),
		Brand: cleanText(product.Find(`[itemprop="brand"]`).First().Text()),
	}

	priceElem := product.Find(`[itemprop="price"]`).First()
	data.Price = cleanText(priceElem.Text())
	if data.Price == "" {
		if content, ok := priceElem.Attr("content"); ok {
			data.Price = cleanText(content)
		}
	}

	if data.Title == "" && data.Brand == "" && data.Price == "" {
		return nil
	}
	return data
}

package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reDigits     = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
)

// outOfStockPhrases flag an unavailable product when found in availability
// copy. Lowercase; matched as substrings.
var outOfStockPhrases = []string{
	"out of stock", "unavailable", "not available", "currently unavailable",
	"sold out", "temporarily unavailable", "stock out", "not in stock",
}

// imageExtensions are the only formats kept during image extraction.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// imageSrcAttrs is the attribute priority when digging a URL out of an <img>
// tag. High-resolution lazy-load attributes come first.
var imageSrcAttrs = []string{"data-old-hires", "data-src", "src", "data-lazy-src"}

func cleanText(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// extractTitle walks the title ladder. Titles shorter than ten characters are
// rejected as selector noise (icon labels, nav headings).
func extractTitle(doc *goquery.Document, ladder []cascadia.Selector) string {
	for _, sel := range ladder {
		text := cleanText(doc.FindMatcher(sel).First().Text())
		if len(text) > 10 {
			return text
		}
	}
	return ""
}

// extractBrand walks the brand ladder. Brand text over 50 characters, or text
// starting with "visit" (Amazon's "Visit the X Store" byline), is rejected.
func extractBrand(doc *goquery.Document, ladder []cascadia.Selector) string {
	for _, sel := range ladder {
		text := cleanText(doc.FindMatcher(sel).First().Text())
		if text == "" || len(text) >= 50 {
			continue
		}
		if strings.HasPrefix(strings.ToLower(text), "visit") {
			continue
		}
		return text
	}
	return ""
}

// extractPrice walks the price ladder. A match must contain at least one
// digit group to count as a price.
func extractPrice(doc *goquery.Document, ladder []cascadia.Selector) string {
	for _, sel := range ladder {
		text := cleanText(doc.FindMatcher(sel).First().Text())
		if text == "" {
			continue
		}
		if reDigits.MatchString(text) {
			return text
		}
	}
	return ""
}

// extractImages collects up to maxImages product image URLs, trying the
// lazy-load attributes before src, absolutizing protocol-relative and
// root-relative paths, and dropping non-image formats and duplicates.
func extractImages(doc *goquery.Document, ladder []cascadia.Selector, baseURL string, maxImages int) []string {
	var images []string
	seen := make(map[string]struct{})

	for _, sel := range ladder {
		doc.FindMatcher(sel).EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src := imageSrc(img)
			if src == "" {
				return true
			}
			src = absolutizeImage(src, baseURL)
			if !validImageURL(src) {
				return true
			}
			if _, dup := seen[src]; dup {
				return true
			}
			seen[src] = struct{}{}
			images = append(images, src)
			return len(images) < maxImages
		})
		if len(images) >= maxImages {
			break
		}
	}
	return images
}

func imageSrc(img *goquery.Selection) string {
	for _, attr := range imageSrcAttrs {
		if val, ok := img.Attr(attr); ok && val != "" {
			return val
		}
	}
	return ""
}

func absolutizeImage(src, baseURL string) string {
	switch {
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		base, err := url.Parse(baseURL)
		if err != nil {
			return src
		}
		ref, err := url.Parse(src)
		if err != nil {
			return src
		}
		return base.ResolveReference(ref).String()
	default:
		return src
	}
}

func validImageURL(src string) bool {
	if !strings.HasPrefix(src, "http") {
		return false
	}
	lower := strings.ToLower(src)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

// checkAvailability reports out-of-stock when any availability element
// contains a stock-out phrase. fullScan additionally checks the whole page
// body, for storefronts that render the notice outside the ladder.
func checkAvailability(doc *goquery.Document, ladder []cascadia.Selector, fullScan bool) bool {
	for _, sel := range ladder {
		text := strings.ToLower(doc.FindMatcher(sel).First().Text())
		if text == "" {
			continue
		}
		if containsStockOutPhrase(text) {
			return true
		}
	}
	if fullScan {
		return containsStockOutPhrase(strings.ToLower(doc.Find("body").Text()))
	}
	return false
}

func containsStockOutPhrase(text string) bool {
	for _, phrase := range outOfStockPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// extractCategoryHint pulls the breadcrumb trail text, when present.
func extractCategoryHint(doc *goquery.Document) string {
	for _, sel := range breadcrumbSelectors {
		text := cleanText(doc.FindMatcher(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

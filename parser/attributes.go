package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const maxSizes = 3

// sizePatterns match size tokens in raw titles. Each pattern's first capture
// group is the token kept.
var sizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(XS|S|M|L|XL|XXL|XXXL)\b`),
	regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:inch|inches|cm|mm)\b`),
	regexp.MustCompile(`(?i)\b(Free Size|One Size|OS)\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s*(?:UK|US|EU|IND)\b`),
}

// quantityPatterns match multi-pack annotations. First capture group is the
// pack count.
var quantityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:pack of|set of)\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s*(?:pack|set|pcs?|pieces?)\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s*in\s*1\b`),
}

var reColors = regexp.MustCompile(`(?i)\b(black|white|red|blue|green|yellow|pink|purple|brown|grey|gray|orange|navy|maroon|beige|cream|gold|silver|rose|mint|coral|teal|olive|khaki)\b`)

// extractSizes pulls size tokens from the raw title, case-normalized to
// upper, deduplicated in first-seen order, capped at 3.
func extractSizes(title string) []string {
	var sizes []string
	seen := make(map[string]struct{})

	for _, pattern := range sizePatterns {
		for _, m := range pattern.FindAllStringSubmatch(title, -1) {
			token := strings.ToUpper(strings.TrimSpace(m[1]))
			if token == "" {
				continue
			}
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			sizes = append(sizes, token)
			if len(sizes) >= maxSizes {
				return sizes
			}
		}
	}
	return sizes
}

// extractQuantity returns the "Npcs" annotation and numeric pack size for
// multi-packs. Single items get ("", 0); a pack of one is a single item.
func extractQuantity(title string) (string, int) {
	for _, pattern := range quantityPatterns {
		if m := pattern.FindStringSubmatch(title); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 1 {
				return "", 0
			}
			return fmt.Sprintf("%dpcs", n), n
		}
	}
	return "", 0
}

// extractColor returns the first color word found in the title, title-cased.
func extractColor(title string) string {
	if m := reColors.FindString(title); m != "" {
		return titleWord(m)
	}
	return ""
}

// detectBrand resolves the brand against the ordered dictionary: the explicit
// scraped field wins when it matches a known brand, otherwise the first
// dictionary entry found in the cleaned title wins. Returns the canonical
// cased form.
func (p *Parser) detectBrand(explicit, cleanTitle string) string {
	if explicit != "" {
		key := strings.ToLower(strings.TrimSpace(explicit))
		for _, brand := range p.brands {
			if strings.ToLower(brand) == key {
				return brand
			}
		}
	}

	titleLower := strings.ToLower(cleanTitle)
	for _, brand := range p.brands {
		if strings.Contains(titleLower, strings.ToLower(brand)) {
			return brand
		}
	}
	return ""
}

// categoryKeywords maps each category to its trigger words. Bucket order is
// fixed; the first bucket with a hit wins.
var categoryBuckets = []struct {
	category string
	keywords []string
}{
	{"clothing", []string{"dress", "shirt", "top", "kurta", "kurti", "saree", "lehenga", "jeans", "trouser", "pant"}},
	{"footwear", []string{"shoes", "sandal", "slipper", "boot", "sneaker", "heel", "flat", "chappal"}},
	{"beauty", []string{"lipstick", "foundation", "mascara", "eyeliner", "compact", "scrub", "cream", "serum"}},
	{"accessories", []string{"watch", "bag", "wallet", "belt", "sunglasses", "jewelry", "earring", "necklace"}},
	{"home", []string{"jar", "bottle", "container", "organizer", "storage", "decor", "cushion", "curtain"}},
	{"electronics", []string{"phone", "earphone", "charger", "speaker", "headphone", "cable", "adapter"}},
}

// detectCategory classifies the cleaned title into a coarse category bucket.
func detectCategory(cleanTitle string) string {
	titleLower := strings.ToLower(cleanTitle)
	for _, bucket := range categoryBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(titleLower, keyword) {
				return bucket.category
			}
		}
	}
	return ""
}

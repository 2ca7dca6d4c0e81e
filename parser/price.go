package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pricePatterns match currency-annotated amounts. Tried in order; the first
// capture group is the numeric part.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`₹\s*(\d+(?:,\d+)*(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)Rs\.?\s*(\d+(?:,\d+)*(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)INR\s*(\d+(?:,\d+)*(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)(\d+(?:,\d+)*(?:\.\d+)?)\s*(?:₹|Rs|INR)`),
}

var reBareNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parsePrice extracts the numeric amount from a raw price string and renders
// the "@{int} rs" display form. A string with no parsable number yields
// (0, "").
func parsePrice(raw string) (float64, string) {
	if raw == "" {
		return 0, ""
	}

	var numeric float64
	for _, pattern := range pricePatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
				numeric = v
				break
			}
		}
	}

	if numeric == 0 {
		// No currency marker matched; take the first bare number.
		if m := reBareNumber.FindString(strings.ReplaceAll(raw, ",", "")); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil {
				numeric = v
			}
		}
	}

	if numeric == 0 {
		return 0, ""
	}
	return numeric, fmt.Sprintf("@%d rs", int(numeric))
}

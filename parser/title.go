package parser

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reSpaces      = regexp.MustCompile(`\s+`)
	reParens      = regexp.MustCompile(`\([^)]*\)`)
	reBrackets    = regexp.MustCompile(`\[[^\]]*\]`)
	rePunctuation = regexp.MustCompile(`\s*[,.\-]\s*`)

	// noisePatterns strip marketing filler, inline price mentions and
	// size/color tags out of raw titles. Applied in order.
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:best|offer|deal|sale|discount|free|gift|new|latest|trending|hot|popular)\b`),
		regexp.MustCompile(`(?i)\b(?:premium|luxury|branded|original|authentic|genuine)\b`),
		regexp.MustCompile(`(?i)\b(?:combo|set of|pack of|bundle)\b`),
		regexp.MustCompile(`(?i)\b(?:for men|for women|for girls|for boys|unisex)\b`),
		regexp.MustCompile(`(?i)\b(?:size|color|colour):\s*\w+\b`),
		regexp.MustCompile(`(?i)\bsize\s+\d+(?:\s*(?:UK|US|EU|IND))?\b`),
		regexp.MustCompile(`₹\s*[\d,]+(?:\.\d+)?`),
		regexp.MustCompile(`(?i)\bRs\.?\s*[\d,]+(?:\.\d+)?`),
		regexp.MustCompile(`\d+%\s*off`),
		regexp.MustCompile(`(?i)\b(?:limited time|hurry|shipping|only|just)\b`),
	}
)

// cleanTitle normalizes a raw product title: whitespace collapse, removal of
// parenthetical asides and marketing noise, punctuation cleanup, duplicate
// word removal, and brand-preserving proper casing.
func (p *Parser) cleanTitle(title string) string {
	title = reSpaces.ReplaceAllString(title, " ")
	title = reParens.ReplaceAllString(title, "")
	title = reBrackets.ReplaceAllString(title, "")

	for _, pattern := range noisePatterns {
		title = pattern.ReplaceAllString(title, "")
	}

	title = rePunctuation.ReplaceAllString(title, " ")
	title = strings.TrimSpace(reSpaces.ReplaceAllString(title, " "))
	title = dropRepeatedWords(title)

	return p.properCase(title)
}

// dropRepeatedWords keeps only the first occurrence of each word,
// case-insensitively. Scraped titles frequently duplicate the product name
// across breadcrumb and heading fragments.
func dropRepeatedWords(s string) string {
	seen := make(map[string]struct{})
	var kept []string
	for _, word := range strings.Fields(s) {
		key := strings.ToLower(word)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// properCase title-cases each word, substituting canonical casing for words
// that match a known brand.
func (p *Parser) properCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if canonical, ok := p.brandLookup[strings.ToLower(word)]; ok {
			words[i] = canonical
			continue
		}
		words[i] = titleWord(word)
	}
	return strings.Join(words, " ")
}

func titleWord(word string) string {
	runes := []rune(word)
	for i, r := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(r)
		} else {
			runes[i] = unicode.ToLower(r)
		}
	}
	return string(runes)
}

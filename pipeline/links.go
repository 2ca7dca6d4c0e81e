package pipeline

import (
	"regexp"
	"strings"
)

var (
	reHTTPLink = regexp.MustCompile(`https?://[^\s<>"']+`)
	reWWWLink  = regexp.MustCompile(`\bwww\.[^\s<>"']+`)
)

// ExtractLinks pulls candidate product links out of free text. Scheme-less
// www links get an https prefix. Duplicates are dropped; first-seen order is
// preserved so response order can match source order.
func ExtractLinks(text string) []string {
	var links []string
	seen := make(map[string]struct{})

	add := func(link string) {
		link = strings.TrimRight(link, ".,;:!?)")
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	for _, m := range reHTTPLink.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range reWWWLink.FindAllString(text, -1) {
		// Skip www matches already captured as part of an http link.
		if strings.Contains(text, "://"+m) {
			continue
		}
		add("https://" + m)
	}
	return links
}

package parser

import (
	"strings"

	"github.com/use-deal/dealbot/models"
)

// scoreQuality grades extraction completeness on a 0-100 additive scale:
// usable title 40 (plus 5 when the title reads naturally at 3-8 words),
// numeric price 30, brand 15, images 10. Adding a field never lowers the
// score.
func scoreQuality(p *models.ParsedProduct) int {
	score := 0

	if len(p.CleanTitle) > 5 {
		score += 40
		if n := len(strings.Fields(p.CleanTitle)); n >= 3 && n <= 8 {
			score += 5
		}
	}
	if p.HasPrice {
		score += 30
	}
	if p.Brand != "" {
		score += 15
	}
	if len(p.Images) > 0 {
		score += 10
	}
	return score
}

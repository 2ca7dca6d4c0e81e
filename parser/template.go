package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/use-deal/dealbot/models"
)

// qualityHighBar gates the attribute-annotated templates.
const qualityHighBar = 80

// maxDisplayWords caps the display title length.
const maxDisplayWords = 10

var reAlnum = regexp.MustCompile(`[a-zA-Z0-9]`)

// selectTemplate picks the message template from the quality score and which
// optional fields survived parsing.
func selectTemplate(p *models.ParsedProduct) models.TemplateName {
	switch {
	case p.QualityScore >= qualityHighBar && len(p.Sizes) > 0 && p.HasPrice:
		return models.TemplateSize
	case p.QualityScore >= qualityHighBar && p.Color != "" && p.HasPrice:
		return models.TemplateColor
	case p.QualityScore >= qualityHighBar && p.PackSize > 1:
		return models.TemplatePack
	case p.HasPrice && p.CleanTitle != "":
		return models.TemplateStandard
	case p.CleanTitle != "" || p.Brand != "":
		return models.TemplateNoPrice
	default:
		return models.TemplateFallback
	}
}

// render fills DisplayTitle, TemplateUsed and FormattedMessage. Empty fields
// are elided rather than rendered as placeholders; an absent price never
// appears as "@0 rs". Whenever the result comes out shorter than 5 characters
// or free of alphanumerics, the universal platform+url fallback is
// substituted.
func render(p *models.ParsedProduct) {
	p.TemplateUsed = selectTemplate(p)
	p.DisplayTitle = displayTitle(p)

	if p.TemplateUsed == models.TemplateFallback {
		p.FormattedMessage = fallbackMessage(p)
		return
	}

	content := p.DisplayTitle
	if p.HasPrice && p.FormattedPrice != "" {
		content += " " + p.FormattedPrice
	}

	// The guard runs on the content alone; the URL would always satisfy it.
	if len(content) < 5 || !reAlnum.MatchString(content) {
		p.TemplateUsed = models.TemplateFallback
		p.FormattedMessage = fallbackMessage(p)
		return
	}

	message := content
	if p.URL != "" {
		message += " " + p.URL
	}

	switch p.TemplateUsed {
	case models.TemplateSize:
		message += "\nSize - " + strings.Join(p.Sizes, ", ")
	case models.TemplateColor:
		message += "\nColor - " + p.Color
	}
	p.FormattedMessage = message
}

// displayTitle assembles brand, cleaned title and pack annotation, capped at
// maxDisplayWords words. The brand prefix is skipped when the cleaned title
// already names it.
func displayTitle(p *models.ParsedProduct) string {
	var parts []string
	if p.Brand != "" && !strings.Contains(strings.ToLower(p.CleanTitle), strings.ToLower(p.Brand)) {
		parts = append(parts, p.Brand)
	}
	if p.CleanTitle != "" {
		parts = append(parts, p.CleanTitle)
	}
	if p.Quantity != "" {
		parts = append(parts, "("+p.Quantity+")")
	}

	words := strings.Fields(strings.Join(parts, " "))
	if len(words) > maxDisplayWords {
		words = words[:maxDisplayWords]
	}
	return strings.Join(words, " ")
}

func fallbackMessage(p *models.ParsedProduct) string {
	platform := string(p.Platform)
	if platform == "" {
		platform = "store"
	}
	return fmt.Sprintf("Product from %s %s", platform, p.URL)
}

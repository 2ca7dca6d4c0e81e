package pipeline

import (
	"strings"

	"github.com/use-deal/dealbot/models"
)

// Quality thresholds for the presentation layer.
const (
	enhanceBar     = 70 // append attribute and pin lines above this
	platformTagBar = 50 // tag the platform below this
)

// pinPriceCeiling is the numeric price under which a pin-code line is added;
// low-priced deals are often pincode-restricted.
const pinPriceCeiling = 500

// finalMessage applies the presentation layer on top of the parser's
// rendered text: high-quality products get any missing Size/Color lines and
// a pin line for low prices; low-quality ones get a platform tag so the
// reader knows where the sparse data came from. The result is truncated to
// the transport limit.
func (p *Pipeline) finalMessage(product *models.ParsedProduct) string {
	message := product.FormattedMessage

	if product.QualityScore >= enhanceBar {
		if len(product.Sizes) > 0 && !strings.Contains(message, "Size - ") {
			message += "\nSize - " + strings.Join(product.Sizes, ", ")
		}
		if product.Color != "" && !strings.Contains(message, "Color - ") {
			message += "\nColor - " + product.Color
		}
		if product.HasPrice && product.PriceNumeric < pinPriceCeiling {
			message += "\nPin - " + p.cfg.DefaultPin
		}
	} else if product.QualityScore < platformTagBar && product.Platform != models.PlatformNone {
		tag := "[" + string(product.Platform) + "]"
		if !strings.HasPrefix(message, "[") {
			message = tag + " " + message
		}
	}

	return truncate(message, p.cfg.MaxMessageLength)
}

// truncate cuts the message at the transport length limit, ending with an
// ellipsis. Cuts on a rune boundary, never mid-character.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(string(runes))+3 > limit && len(runes) > 0 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

package resolver

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/use-deal/dealbot/models"
)

// platformEntry binds a platform tag to its domain list and product-id
// patterns. Kept as pure data so new platforms are additive.
type platformEntry struct {
	platform models.Platform
	domains  []string
	idRes    []*regexp.Regexp
}

// platformTable is checked in order; the first domain hit wins.
var platformTable = []platformEntry{
	{
		platform: models.PlatformAmazon,
		domains:  []string{"amazon.in", "amazon.com", "amzn.to"},
		idRes: []*regexp.Regexp{
			regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
			regexp.MustCompile(`/gp/product/([A-Z0-9]{10})`),
			regexp.MustCompile(`/product/([A-Z0-9]{10})`),
			regexp.MustCompile(`asin=([A-Z0-9]{10})`),
		},
	},
	{
		platform: models.PlatformFlipkart,
		domains:  []string{"flipkart.com", "fkrt.it"},
		idRes: []*regexp.Regexp{
			regexp.MustCompile(`/p/([a-zA-Z0-9-]+)`),
			regexp.MustCompile(`pid=([A-Z0-9]+)`),
		},
	},
	{
		platform: models.PlatformMeesho,
		domains:  []string{"meesho.com"},
		idRes: []*regexp.Regexp{
			regexp.MustCompile(`/product/([a-zA-Z0-9-]+)`),
			regexp.MustCompile(`/s/p/([a-zA-Z0-9]+)`),
		},
	},
	{
		platform: models.PlatformMyntra,
		domains:  []string{"myntra.com"},
		idRes: []*regexp.Regexp{
			regexp.MustCompile(`/(\d+)/buy`),
			regexp.MustCompile(`/product/(\d+)`),
		},
	},
	{
		platform: models.PlatformAjio,
		domains:  []string{"ajio.com"},
		idRes: []*regexp.Regexp{
			regexp.MustCompile(`/p/(\d+)`),
			regexp.MustCompile(`/product/(\d+)`),
		},
	},
	{
		platform: models.PlatformSnapdeal,
		domains:  []string{"snapdeal.com"},
		idRes: []*regexp.Regexp{
			regexp.MustCompile(`/product/([a-zA-Z0-9-]+)`),
		},
	},
	{
		platform: models.PlatformWishlink,
		domains:  []string{"wishlink.com"},
	},
}

// DetectPlatform matches the URL's host against the platform domain table.
// No match is not an error; it returns PlatformNone.
func DetectPlatform(rawURL string) models.Platform {
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.PlatformNone
	}
	host := strings.ToLower(u.Host)

	for _, e := range platformTable {
		for _, d := range e.domains {
			if strings.Contains(host, d) {
				return e.platform
			}
		}
	}
	return models.PlatformNone
}

// ExtractProductID runs the platform's ordered pattern list against the full
// URL; the first capturing match wins. Returns "" when nothing matches.
func ExtractProductID(rawURL string, platform models.Platform) string {
	for _, e := range platformTable {
		if e.platform != platform {
			continue
		}
		for _, re := range e.idRes {
			if m := re.FindStringSubmatch(rawURL); m != nil {
				return m[1]
			}
		}
		return ""
	}
	return ""
}

package resolver

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/use-deal/dealbot/config"
	"github.com/use-deal/dealbot/models"
)

const resolverUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxHops bounds the redirect chain. Hitting the cap is not an error; the
// last URL reached is returned as-is.
const maxHops = 10

// trackingParams is the deny-list of query parameters stripped during URL
// cleaning. Affiliate and analytics noise only; everything else survives in
// its original order.
var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {},
	"utm_content": {}, "fbclid": {}, "gclid": {}, "msclkid": {},
	"ref": {}, "tag": {}, "linkCode": {}, "creative": {}, "creativeASIN": {},
	"ascsubtag": {}, "mc": {}, "sr": {}, "icid": {}, "clickid": {},
	"offer_id": {}, "aff_id": {}, "affid": {}, "_branch_match_id": {},
}

// Resolver cleans product links, follows shortener/redirect chains, and
// classifies the destination platform. It is stateless apart from its HTTP
// clients and safe for concurrent use.
type Resolver struct {
	// noRedirect issues single-hop requests; the loop follows Location
	// headers itself so every hop counts against maxHops.
	noRedirect *http.Client

	// follow chases redirects in one call, for shortener strategies where
	// the chain itself is uninteresting.
	follow *http.Client
}

// New creates a Resolver using the fetch timeout from config.
func New(cfg config.FetchConfig) *Resolver {
	return &Resolver{
		noRedirect: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		follow: &http.Client{Timeout: cfg.Timeout},
	}
}

// Resolve runs the full pipeline: normalize, validate, follow the redirect
// chain, detect the platform, extract the product id.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) models.ResolvedURL {
	result := models.ResolvedURL{
		OriginalURL: rawURL,
		FinalURL:    rawURL,
	}

	cleaned := CleanURL(rawURL)
	if !ValidURL(cleaned) {
		result.Err = models.NewDealError(models.ErrCodeInvalidLink, "invalid URL format", nil)
		return result
	}

	final := r.followChain(ctx, cleaned)
	result.FinalURL = final

	result.Platform = DetectPlatform(final)
	if result.Platform != models.PlatformNone {
		result.ProductID = ExtractProductID(final, result.Platform)
	}

	slog.Debug("url resolved",
		"original", rawURL,
		"final", final,
		"platform", string(result.Platform),
	)
	return result
}

// CleanURL prepends a scheme when missing and strips tracking parameters,
// rebuilding the query from the surviving parameters in their original order.
// Cleaning an already-clean URL is a no-op, so the operation is idempotent.
func CleanURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	cleaned := u.Scheme + "://" + u.Host + u.EscapedPath()
	if q := cleanQuery(u.RawQuery); q != "" {
		cleaned += "?" + q
	}
	return cleaned
}

// cleanQuery drops denied parameters while preserving the order of the rest.
// url.Values cannot be used here: it is a map and loses ordering.
func cleanQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if _, denied := trackingParams[key]; denied {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// ValidURL reports whether the URL has both a scheme and a host.
func ValidURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// followChain walks the redirect chain, dispatching known shortener hosts to
// their dedicated strategy and everything else to a single HEAD hop.
func (r *Resolver) followChain(ctx context.Context, start string) string {
	current := start

	for hop := 0; hop < maxHops; hop++ {
		host := hostOf(current)

		if kind, known := shortenerFor(host); known {
			var resolved string
			switch kind {
			case htmlScan:
				resolved = r.resolveHTMLScan(ctx, current)
			default:
				resolved = r.resolveHeadFollow(ctx, current)
			}
			if resolved != "" && resolved != current {
				current = resolved
				continue
			}
		}

		next, ok := r.headHop(ctx, current)
		if !ok {
			break
		}
		current = next
	}

	return current
}

// headHop issues one HEAD request with redirects disabled and returns the
// Location target when the response is a redirect status.
func (r *Resolver) headHop(ctx context.Context, current string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, current, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", resolverUA)

	resp, err := r.noRedirect.Do(req)
	if err != nil {
		slog.Warn("redirect hop failed", "url", current, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return "", false
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", false
	}
	return absoluteLocation(current, location), true
}

// absoluteLocation resolves a Location header value against the current URL.
func absoluteLocation(current, location string) string {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return location
	}
	if strings.HasPrefix(location, "/") {
		u, err := url.Parse(current)
		if err != nil {
			return location
		}
		return u.Scheme + "://" + u.Host + location
	}
	return "https://" + location
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

package resolver

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// strategyKind selects how a known shortener/redirect service is resolved.
type strategyKind int

const (
	// headFollow lets the HTTP client chase redirects and takes the final URL.
	headFollow strategyKind = iota
	// htmlScan fetches the interstitial page and digs the target out of
	// meta-refresh tags, inline JS redirects, or form actions.
	htmlScan
)

// shortenerTable maps redirect-service hosts to their resolution strategy.
// Services that answer with plain 3xx chains use headFollow; services that
// render an HTML interstitial need htmlScan.
var shortenerTable = map[string]strategyKind{
	"bitli.in":        htmlScan,
	"wishlink.com":    htmlScan,
	"bit.ly":          headFollow,
	"tinyurl.com":     headFollow,
	"amzn.to":         headFollow,
	"fkrt.it":         headFollow,
	"cutt.ly":         headFollow,
	"rb.gy":           headFollow,
	"tiny.cc":         headFollow,
	"short.link":      headFollow,
	"linkredirect.in": headFollow,
	"spoo.me":         headFollow,
	"da.gd":           headFollow,
}

// shortenerFor returns the strategy for the host, if the host belongs to a
// known redirect service.
func shortenerFor(host string) (strategyKind, bool) {
	host = strings.ToLower(host)
	for service, kind := range shortenerTable {
		if strings.Contains(host, service) {
			return kind, true
		}
	}
	return 0, false
}

// resolveHeadFollow issues a HEAD request with redirects enabled and returns
// the URL the chain landed on. Returns "" when the service answered with an
// error status.
func (r *Resolver) resolveHeadFollow(ctx context.Context, target string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", resolverUA)

	resp, err := r.follow.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ""
	}
	return resp.Request.URL.String()
}

// resolveHTMLScan fetches the interstitial page and extracts the redirect
// target embedded in its markup.
func (r *Resolver) resolveHTMLScan(ctx context.Context, target string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", resolverUA)

	resp, err := r.follow.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return ""
	}
	return scanRedirectTarget(body)
}

var (
	reJSRedirect  = regexp.MustCompile(`window\.location(?:\.href)?\s*=\s*["']([^"']+)["']`)
	reRedirectVar = regexp.MustCompile(`var\s+redirectUrl\s*=\s*["']([^"']+)["']`)
	reMetaContent = regexp.MustCompile(`(?i)^\s*\d+\s*;\s*url\s*=\s*(.+)$`)
)

// scanRedirectTarget digs a redirect destination out of interstitial HTML.
// Markup-level patterns (meta-refresh, form action) are found with the
// tokenizer; script-level patterns with regular expressions. Checked in order
// of reliability: explicit redirect variable, JS location assignment,
// meta-refresh, form action.
func scanRedirectTarget(body []byte) string {
	if m := reRedirectVar.FindSubmatch(body); m != nil {
		return decodeTarget(string(m[1]))
	}
	if m := reJSRedirect.FindSubmatch(body); m != nil {
		return decodeTarget(string(m[1]))
	}

	var metaTarget, formTarget string
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		name, hasAttr := tokenizer.TagName()
		switch string(name) {
		case "meta":
			var httpEquiv, content string
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = tokenizer.TagAttr()
				switch string(key) {
				case "http-equiv":
					httpEquiv = string(val)
				case "content":
					content = string(val)
				}
			}
			if strings.EqualFold(httpEquiv, "refresh") {
				if m := reMetaContent.FindStringSubmatch(content); m != nil {
					metaTarget = decodeTarget(strings.Trim(m[1], `"' `))
				}
			}
		case "form":
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = tokenizer.TagAttr()
				if string(key) == "action" && formTarget == "" {
					formTarget = string(val)
				}
			}
		}
	}

	if metaTarget != "" {
		return metaTarget
	}
	if formTarget != "" && strings.HasPrefix(formTarget, "http") {
		return formTarget
	}
	return ""
}

// decodeTarget unescapes percent-encoded redirect targets; scan results are
// often URL-encoded by the interstitial page.
func decodeTarget(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}

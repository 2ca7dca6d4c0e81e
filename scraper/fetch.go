package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	tls2 "github.com/refraction-networking/utls"
	"golang.org/x/time/rate"

	"github.com/use-deal/dealbot/config"
	"github.com/use-deal/dealbot/models"
)

// userAgents is rotated across retry attempts when a site refuses the
// previous identity.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:132.0) Gecko/20100101 Firefox/132.0",
}

// fetcher performs product-page GETs with a Chrome TLS fingerprint (utls),
// bounded retries and a per-host politeness limiter. The transport is reused
// across requests for connection pooling; it carries no business state.
type fetcher struct {
	client *http.Client
	cfg    config.FetchConfig

	// sleep is injectable so retry tests run without real delays.
	sleep func(time.Duration)

	mu       sync.Mutex
	limiters map[string]*hostLimiter
}

type hostLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newFetcher creates a fetcher. The cleanup goroutine evicts host limiters
// idle for over an hour.
func newFetcher(cfg config.FetchConfig) *fetcher {
	f := &fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialTLSContext: dialTLSChrome,
			},
		},
		cfg:      cfg,
		sleep:    time.Sleep,
		limiters: make(map[string]*hostLimiter),
	}
	go f.cleanupLoop()
	return f
}

// fetch retrieves the URL, rotating user agents and backing off between
// attempts. Returns the body bytes, or a NETWORK_ERROR once retries are
// exhausted.
func (f *fetcher) fetch(ctx context.Context, targetURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			// Linear backoff between attempts.
			f.sleep(f.cfg.RetryBaseDelay * time.Duration(attempt))
		}

		if err := f.waitHost(ctx, targetURL); err != nil {
			return nil, models.NewDealError(models.ErrCodeNetwork, "request cancelled", err)
		}

		body, status, err := f.doGet(ctx, targetURL, userAgents[attempt%len(userAgents)])
		if err != nil {
			lastErr = err
			slog.Warn("fetch attempt failed", "url", targetURL, "attempt", attempt+1, "error", err)
			continue
		}

		switch {
		case status >= 200 && status < 300:
			return body, nil
		case status == http.StatusTooManyRequests:
			slog.Warn("fetch rate limited by site", "url", targetURL, "attempt", attempt+1)
			f.sleep(f.cfg.RateLimitedDelay)
		default:
			// 403 and friends: rotate the user agent and try again.
			lastErr = fmt.Errorf("HTTP %d", status)
			slog.Warn("fetch got error status", "url", targetURL, "status", status, "attempt", attempt+1)
		}
	}

	if lastErr == nil {
		lastErr = errors.New("retries exhausted")
	}
	return nil, models.NewDealError(models.ErrCodeNetwork,
		fmt.Sprintf("failed to fetch page after %d attempts", f.cfg.MaxRetries), lastErr)
}

// doGet issues one GET with a realistic browser header set.
func (f *fetcher) doGet(ctx context.Context, targetURL, userAgent string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,hi;q=0.8")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024)) // 10 MB cap
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// waitHost blocks until the target host's limiter admits another request.
func (f *fetcher) waitHost(ctx context.Context, targetURL string) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil
	}
	host := u.Host

	f.mu.Lock()
	entry, ok := f.limiters[host]
	if !ok {
		entry = &hostLimiter{
			limiter: rate.NewLimiter(rate.Limit(f.cfg.HostRPS), f.cfg.HostBurst),
		}
		f.limiters[host] = entry
	}
	entry.lastSeen = time.Now()
	f.mu.Unlock()

	return entry.limiter.Wait(ctx)
}

// cleanupLoop evicts host limiters not seen in the last hour.
func (f *fetcher) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		f.mu.Lock()
		for host, entry := range f.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(f.limiters, host)
			}
		}
		f.mu.Unlock()
	}
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via utls.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

package ratelimit

import (
	"strconv"
	"sync"
	"time"

	"github.com/use-deal/dealbot/config"
)

// Limiter is a per-identity sliding-window rate limiter.
// It is safe for concurrent use: the prune-then-append sequence for a window
// runs under one lock so concurrent checks cannot double-count.
type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	window  time.Duration
	quota   int
	now     func() time.Time
}

// New creates a Limiter from config. A background goroutine evicts identities
// that have been idle for longer than one full window.
func New(cfg config.RateLimitConfig) *Limiter {
	l := NewWithClock(cfg, time.Now)
	go l.cleanupLoop()
	return l
}

// NewWithClock creates a Limiter with an injected clock and no cleanup
// goroutine. Used by tests.
func NewWithClock(cfg config.RateLimitConfig, now func() time.Time) *Limiter {
	return &Limiter{
		windows: make(map[string][]time.Time),
		window:  cfg.Window,
		quota:   cfg.MaxRequests,
		now:     now,
	}
}

// Allow reports whether the user may make a request now. An allowed request
// is counted against the window immediately.
func (l *Limiter) Allow(userID int64) bool {
	return l.AllowKey("user:" + strconv.FormatInt(userID, 10))
}

// AllowKey is Allow for arbitrary string identities (API keys, client IPs).
func (l *Limiter) AllowKey(identity string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	times := l.windows[identity]

	// Prune timestamps that fell out of the sliding window.
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.quota {
		l.windows[identity] = kept
		return false
	}

	l.windows[identity] = append(kept, now)
	return true
}

// cleanupLoop evicts identities whose newest timestamp is older than one
// window, preventing unbounded memory growth.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := l.now().Add(-l.window)
		l.mu.Lock()
		for id, times := range l.windows {
			if len(times) == 0 || !times[len(times)-1].After(cutoff) {
				delete(l.windows, id)
			}
		}
		l.mu.Unlock()
	}
}

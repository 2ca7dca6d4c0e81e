package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/use-deal/dealbot/config"
)

func TestAllowUpToQuota(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewWithClock(config.RateLimitConfig{Window: time.Minute, MaxRequests: 3}, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(42), "request %d should be admitted", i+1)
	}
	assert.False(t, l.Allow(42), "quota+1th request should be denied")
}

func TestWindowSlides(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewWithClock(config.RateLimitConfig{Window: time.Minute, MaxRequests: 2}, func() time.Time { return now })

	assert.True(t, l.Allow(7))
	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow(7))
	assert.False(t, l.Allow(7))

	// Once the earliest counted request falls out of the window,
	// admission resumes.
	now = now.Add(31 * time.Second)
	assert.True(t, l.Allow(7))
}

func TestIdentitiesAreIndependent(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewWithClock(config.RateLimitConfig{Window: time.Minute, MaxRequests: 1}, func() time.Time { return now })

	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
	assert.True(t, l.Allow(2))
}

package cache

import (
	"sync"
	"time"

	"github.com/use-deal/dealbot/models"
)

// entry holds a cached product with its creation timestamp.
type entry struct {
	product  *models.ParsedProduct
	storedAt time.Time
}

// Cache is an in-memory TTL cache for parsed products, keyed by the raw link
// text as it appeared in the source message. It is safe for concurrent use:
// the check-then-insert sequence in Set runs under one lock.
//
// Eviction under capacity pressure is oldest-first by stored_at, never random,
// so a burst of inserts cannot evict fresh entries while stale ones survive.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a Cache with the given TTL and capacity. A background goroutine
// evicts expired entries every 5 minutes.
func New(ttl time.Duration, maxEntries int) *Cache {
	c := NewWithClock(ttl, maxEntries, time.Now)
	go c.cleanupLoop()
	return c
}

// NewWithClock creates a Cache with an injected clock and no cleanup
// goroutine. Used by tests.
func NewWithClock(ttl time.Duration, maxEntries int, now func() time.Time) *Cache {
	return &Cache{
		store:      make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
	}
}

// Get retrieves a cached product if it exists and is younger than the TTL.
// An expired entry is treated as a miss (it is removed lazily by Set pressure
// or the cleanup loop, not here, so Get stays on the read lock).
func (c *Cache) Get(key string) (*models.ParsedProduct, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.product, true
}

// Set stores a product. At capacity, expired entries are dropped first, then
// the oldest live entries until there is room.
func (c *Cache) Set(key string, product *models.ParsedProduct) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		c.evictLocked()
	}

	c.store[key] = &entry{product: product, storedAt: c.now()}
}

// Size returns the current number of entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*entry)
}

// evictLocked frees at least one slot. Caller holds the write lock.
func (c *Cache) evictLocked() {
	now := c.now()
	for k, e := range c.store {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.store, k)
		}
	}

	for len(c.store) >= c.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.store {
			if oldestKey == "" || e.storedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.storedAt
			}
		}
		delete(c.store, oldestKey)
	}
}

// cleanupLoop evicts expired entries every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := c.now().Add(-c.ttl)
		c.mu.Lock()
		for k, e := range c.store {
			if e.storedAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}

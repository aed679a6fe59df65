package fetch

import (
	"sync"
	"time"
)

// responseCache is a small in-memory TTL cache for response bodies.
// Expired entries are dropped lazily on read; when the cache hits its
// size cap the oldest entries are evicted.
type responseCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	maxSize int
}

type cacheEntry struct {
	body      []byte
	expiresAt time.Time
}

func newResponseCache(maxSize int) *responseCache {
	return &responseCache{
		entries: make(map[string]*cacheEntry, maxSize),
		maxSize: maxSize,
	}
}

func (c *responseCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.body, true
}

func (c *responseCache) put(key string, body []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[key] = &cacheEntry{
		body:      body,
		expiresAt: time.Now().Add(ttl),
	}
}

// evictOldestLocked drops the quarter of entries closest to expiry.
func (c *responseCache) evictOldestLocked() {
	drop := c.maxSize / 4
	if drop < 1 {
		drop = 1
	}
	for key, entry := range c.entries {
		if time.Now().After(entry.expiresAt) {
			delete(c.entries, key)
			drop--
			if drop == 0 {
				return
			}
		}
	}
	// not enough expired entries, drop arbitrary ones
	for key := range c.entries {
		delete(c.entries, key)
		drop--
		if drop == 0 {
			return
		}
	}
}

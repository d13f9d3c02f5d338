// Package kvcache is the dashboard's in-process key-value cache for
// derived read-path values (team aggregate counts and the like). The sync
// engine invalidates team-keyed entries at the end of every run so read
// paths never serve stale aggregates.
package kvcache

import (
	"strings"
	"sync"
	"time"
)

// entry pairs a cached value with its expiry. Zero expiry means no TTL.
type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a concurrency-safe TTL cache with prefix invalidation.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is overridable for TTL tests.
	now func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key, or (nil, false) when the key is
// absent or expired. Expired entries are dropped lazily.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, false
	}

	return e.value, true
}

// Set stores a value under key. ttl <= 0 means the entry never expires on
// its own and lives until invalidated.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// InvalidatePrefix removes every entry whose key starts with prefix and
// returns the number of entries dropped.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			dropped++
		}
	}

	return dropped
}

// Len returns the number of live entries, counting not-yet-reaped expired
// ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Package cache is the process-wide, short-TTL memo for expensive list
// queries. It is advisory only: every entry can be recomputed from storage.
//
// Staleness is checked lazily on Get and size is bounded lazily on Set; no
// background goroutine runs.
package cache

import (
	"strings"
	"sync"
	"time"
)

const (
	// HighWaterMark is the entry count above which Set sweeps old entries.
	HighWaterMark = 1000
	// MaxAge is the absolute age past which the sweep drops an entry.
	MaxAge = 60 * time.Second
)

type entry struct {
	value    any
	storedAt time.Time
}

// Cache maps opaque string keys to values stamped with their store time.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// New returns an empty cache using the wall clock.
func New() *Cache {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty cache reading time from now.
func NewWithClock(now func() time.Time) *Cache {
	return &Cache{entries: make(map[string]entry), now: now}
}

// Get returns the value stored under key if it is younger than ttl. A stale
// entry is removed and reported as absent.
func (c *Cache) Get(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry. When the cache
// holds more than HighWaterMark entries, entries older than MaxAge are
// dropped. The bound is soft: young entries are never evicted.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = entry{value: value, storedAt: now}

	if len(c.entries) <= HighWaterMark {
		return
	}
	for k, e := range c.entries {
		if now.Sub(e.storedAt) > MaxAge {
			delete(c.entries, k)
		}
	}
}

// InvalidatePrefix removes every entry whose key starts with prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Len reports the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

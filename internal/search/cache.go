package search

import (
	"sync"
	"time"

	"github.com/StatTag/StatWrap-sub000/model"
)

type cacheEntry struct {
	results   *model.GroupedResults
	expiresAt time.Time
}

// ResultCache is a bounded, TTL-limited cache of grouped results. Expired
// entries are dropped when read; the oldest inserted entry is evicted when a
// put finds the cache full.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]cacheEntry
	order    []string // insertion order, oldest first
	hits     int64
	misses   int64
	now      func() time.Time
}

// NewResultCache creates a cache holding at most capacity entries for ttl each.
// A capacity below one disables caching.
func NewResultCache(capacity int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]cacheEntry),
		now:      time.Now,
	}
}

// Get returns a copy of the live entry for key, so callers may reorder or
// trim the buckets without touching the cached value.
func (c *ResultCache) Get(key string) (*model.GroupedResults, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.removeLocked(key)
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.results.Clone(), true
}

// Put stores a copy of results under key.
func (c *ResultCache) Put(key string, results *model.GroupedResults) {
	if c.capacity < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.removeLocked(key)
	}
	for len(c.order) >= c.capacity {
		c.removeLocked(c.order[0])
	}
	c.entries[key] = cacheEntry{results: results.Clone(), expiresAt: c.now().Add(c.ttl)}
	c.order = append(c.order, key)
}

func (c *ResultCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// Clear drops every entry. Hit and miss counters are kept.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.order = nil
}

// Len returns the number of stored entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports hit/miss counters and occupancy.
func (c *ResultCache) Stats() model.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := model.CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		Size:     len(c.entries),
		Capacity: c.capacity,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

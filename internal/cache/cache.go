// Package cache provides a small in-memory TTL cache for search responses.
// It exists to avoid redundant billed calls to metered retailer APIs, not to
// be a general-purpose cache: entries are evicted lazily on lookup, never by
// a background sweeper.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"needlist/internal/domain"
)

// DefaultTTL matches the reference behavior of 30 minutes.
const DefaultTTL = 30 * time.Minute

// entry is one cached search response.
type entry struct {
	results  []domain.SearchResult
	storedAt time.Time
}

// SearchCache is a concurrency-safe TTL cache of search results.
type SearchCache struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time // injectable clock for tests
}

// NewSearchCache creates a cache with the given TTL; ttl <= 0 uses DefaultTTL.
func NewSearchCache(ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SearchCache{
		data: make(map[string]entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Key composes a cache key from a query and its options. The query is
// lowercased so "Blanket" and "blanket" share an entry; options serialize
// canonically so field order can never split the key space.
func Key(query string, opts ...interface{}) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(query)))
	for _, opt := range opts {
		fmt.Fprintf(&b, "|%v", opt)
	}
	return b.String()
}

// Get returns the cached results for key if present and unexpired.
// An expired entry is removed and reported as a miss.
func (c *SearchCache) Get(key string) ([]domain.SearchResult, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; another caller may have refreshed it.
		if cur, ok := c.data[key]; ok && c.now().Sub(cur.storedAt) >= c.ttl {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	out := make([]domain.SearchResult, len(e.results))
	copy(out, e.results)
	return out, true
}

// Set stores results under key with the current timestamp. Empty result
// lists are cached too; a retailer that returned nothing is still an answer.
func (c *SearchCache) Set(key string, results []domain.SearchResult) {
	stored := make([]domain.SearchResult, len(results))
	copy(stored, results)

	c.mu.Lock()
	c.data[key] = entry{results: stored, storedAt: c.now()}
	c.mu.Unlock()
}

// Len reports the number of entries currently held, expired or not.
func (c *SearchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/relcis/models"
)

// entry holds a cached response with its creation timestamp.
type entry struct {
	results   []models.SearchResult
	createdAt time.Time
}

// Cache is a simple in-memory cache for web search results.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	maxAge     time.Duration
}

// New creates a new Cache with the given maximum number of entries and
// entry lifetime. A maxAge of zero disables caching entirely. A background
// goroutine runs every 5 minutes to evict expired entries.
func New(maxEntries int, maxAge time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}

	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the normalized query.
func Key(query string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(h.Sum(nil))
}

// Enabled reports whether caching is active.
func (c *Cache) Enabled() bool {
	return c != nil && c.maxAge > 0
}

// Get retrieves cached results if they exist and are younger than the
// configured max age. Returns the results and whether it was a cache hit.
func (c *Cache) Get(key string) ([]models.SearchResult, bool) {
	if c == nil || c.maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(e.createdAt) > c.maxAge {
		return nil, false
	}
	return e.results, true
}

// Set stores results in the cache. If the cache is at capacity, a random
// entry is evicted to make room.
func (c *Cache) Set(key string, results []models.SearchResult) {
	if c == nil || c.maxAge <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		results:   results,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts expired entries every 5 minutes.
func (c *Cache) cleanupLoop() {
	if c.maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.maxAge)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}

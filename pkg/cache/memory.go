package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nvraman/suraksha/core"
)

// InMemoryCache implements the local fallback profile tier. It is strictly
// a degraded-mode substitute for the remote store and is never promoted
// back to authoritative status.
type InMemoryCache struct {
	cache   map[string]*cachedRecord // key: principal id
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type cachedRecord struct {
	profile  *core.UserProfile
	cachedAt time.Time
}

var _ core.CacheWithStats = (*InMemoryCache)(nil)

// NewInMemoryCache creates a new in-memory profile cache
func NewInMemoryCache(c core.CacheConfig) *InMemoryCache {
	if c.TTL == 0 {
		c.TTL = 12 * time.Hour
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}

	return &InMemoryCache{
		cache:   make(map[string]*cachedRecord),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
	}
}

// Get retrieves a profile from cache
func (c *InMemoryCache) Get(id string) (*core.UserProfile, error) {
	c.mu.RLock()
	record, exists := c.cache[id]
	c.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheNotFound
	}

	if time.Since(record.cachedAt) > c.ttl {
		// expired
		atomic.AddInt64(&c.misses, 1)
		_ = c.Delete(id)
		return nil, core.ErrCacheNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	return record.profile, nil
}

// Set stores a profile in cache
func (c *InMemoryCache) Set(id string, profile *core.UserProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple eviction if full
	if _, exists := c.cache[id]; !exists && len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			atomic.AddInt64(&c.evictions, 1)
			break
		}
	}

	c.cache[id] = &cachedRecord{
		profile:  profile,
		cachedAt: time.Now(),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

// Delete removes a profile from cache
func (c *InMemoryCache) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.cache[id]; existed {
		delete(c.cache, id)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

// Clear empties the cache
func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cachedRecord)
	return nil
}

func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}

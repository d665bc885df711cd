// Package preload_cache holds prefetched image handles in a bounded
// least-recently-used cache shared by all loaders and preloaders.
package preload_cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
	"github.com/WhoamiI00/neo-pins-sub000/utils/metrics"
)

// PreloadCache is a capacity-bounded LRU of loaded-image handles keyed by
// the fully-transformed URL. A read refreshes the entry's recency, so the
// entry evicted on overflow is always the least recently accessed one.
// Entries carry no TTL; capacity is the only eviction trigger.
type PreloadCache struct {
	mu        sync.Mutex
	entries   *lru.Cache[string, *domain.CacheEntry]
	collector *metrics.DeliveryMetricsCollector
}

// NewPreloadCache creates a cache bounded to capacity entries. collector
// may be nil to disable hit/miss accounting.
func NewPreloadCache(capacity int, collector *metrics.DeliveryMetricsCollector) (*PreloadCache, error) {
	if capacity <= 0 {
		capacity = domain.DefaultPreloadCacheCapacity
	}
	entries, err := lru.New[string, *domain.CacheEntry](capacity)
	if err != nil {
		return nil, err
	}
	return &PreloadCache{entries: entries, collector: collector}, nil
}

// Get returns the cached handle for key, refreshing its recency. The
// returned handle is owned by the cache; callers must not mutate it.
func (c *PreloadCache) Get(key string) (*domain.ImageFetchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(key)
	if !ok {
		if c.collector != nil {
			c.collector.RecordCacheMiss()
		}
		return nil, false
	}

	entry.LastAccess = time.Now()
	if c.collector != nil {
		c.collector.RecordCacheHit()
	}
	return entry.Handle, true
}

// Contains reports whether key is cached without refreshing recency or
// touching the hit/miss counters.
func (c *PreloadCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Contains(key)
}

// Put inserts a handle under key. When the cache is at capacity the least
// recently accessed entry is evicted first.
func (c *PreloadCache) Put(key string, handle *domain.ImageFetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Add(key, &domain.CacheEntry{
		Key:        key,
		Handle:     handle,
		LastAccess: time.Now(),
	})
}

// Len returns the number of cached entries.
func (c *PreloadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Keys returns the cached keys from least to most recently accessed.
func (c *PreloadCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Keys()
}

// Purge drops every entry.
func (c *PreloadCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

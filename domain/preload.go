package domain

import "time"

// PreloadOptions are per-call options for a single preload.
type PreloadOptions struct {
	// Timeout bounds how long the caller waits. It does not cancel the
	// underlying fetch, which may still complete and populate the cache.
	Timeout  time.Duration
	Priority bool
}

// NewPreloadOptions creates default PreloadOptions.
func NewPreloadOptions() *PreloadOptions {
	return &PreloadOptions{Timeout: 30 * time.Second}
}

// ProgressFunc reports batch progress after every individual completion,
// success or failure. completed increases monotonically from 1 to total.
type ProgressFunc func(completed, total int)

// BatchPreloadOptions are options for a batch preload run.
type BatchPreloadOptions struct {
	MaxConcurrent int
	OnProgress    ProgressFunc
}

// NewBatchPreloadOptions creates default BatchPreloadOptions.
func NewBatchPreloadOptions() *BatchPreloadOptions {
	return &BatchPreloadOptions{MaxConcurrent: 3}
}

// CacheEntry is one cached preloaded image. Entries are owned exclusively
// by the cache; callers receive the handle read-only.
type CacheEntry struct {
	Key        string
	Handle     *ImageFetchResult
	LastAccess time.Time
}

// DefaultPreloadCacheCapacity bounds the preload cache.
const DefaultPreloadCacheCapacity = 50

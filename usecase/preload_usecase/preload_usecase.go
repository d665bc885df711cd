// Package preload_usecase warms the image cache ahead of rendering, one
// URL at a time or in ordered batches.
package preload_usecase

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
	"github.com/WhoamiI00/neo-pins-sub000/driver/preload_cache"
	"github.com/WhoamiI00/neo-pins-sub000/port/image_fetch_port"
	"github.com/WhoamiI00/neo-pins-sub000/usecase/progressive_image_usecase"
	"github.com/WhoamiI00/neo-pins-sub000/utils/errors"
	"github.com/WhoamiI00/neo-pins-sub000/utils/logger"
	"github.com/WhoamiI00/neo-pins-sub000/utils/metrics"
)

// ImagePreloader fetches images before they are rendered and stores them in
// the shared preload cache. Concurrent preloads of the same transformed URL
// are collapsed into a single fetch.
type ImagePreloader struct {
	fetcher   image_fetch_port.ImageFetchPort
	network   progressive_image_usecase.NetworkStateReader
	cache     *preload_cache.PreloadCache
	collector *metrics.DeliveryMetricsCollector
	baseWidth int
	inflight  singleflight.Group
}

// NewImagePreloader creates an ImagePreloader. collector may be nil.
func NewImagePreloader(
	fetcher image_fetch_port.ImageFetchPort,
	network progressive_image_usecase.NetworkStateReader,
	cache *preload_cache.PreloadCache,
	collector *metrics.DeliveryMetricsCollector,
	baseWidth int,
) *ImagePreloader {
	if baseWidth <= 0 {
		baseWidth = 400
	}
	return &ImagePreloader{
		fetcher:   fetcher,
		network:   network,
		cache:     cache,
		collector: collector,
		baseWidth: baseWidth,
	}
}

// CacheKey returns the cache key for a raw URL: the exact transformed URL
// under the current network-optimal parameters. Distinct parameter sets for
// the same raw URL are distinct cache entries.
func (p *ImagePreloader) CacheKey(rawURL string) string {
	return domain.TransformURL(rawURL, p.network.OptimalImageParams(p.baseWidth))
}

// PreloadOne fetches one image into the cache and returns its entry. A
// cache hit short-circuits without any network activity. On timeout the
// caller's wait is abandoned but the underlying fetch keeps running and
// still populates the cache on a late success.
func (p *ImagePreloader) PreloadOne(ctx context.Context, rawURL string, opts *domain.PreloadOptions) (*domain.CacheEntry, error) {
	if opts == nil {
		opts = domain.NewPreloadOptions()
	}

	key := p.CacheKey(rawURL)
	if handle, ok := p.cache.Get(key); ok {
		return &domain.CacheEntry{Key: key, Handle: handle, LastAccess: time.Now()}, nil
	}

	// The fetch outlives this caller's wait: timing out below abandons the
	// wait only, and a late success still populates the cache.
	ch := p.inflight.DoChan(key, func() (any, error) {
		return p.fetchAndStore(context.WithoutCancel(ctx), key)
	})

	timer := time.NewTimer(opts.Timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.CacheEntry), nil
	case <-ctx.Done():
		return nil, errors.NewTimeoutContextError("preload cancelled", "usecase", "ImagePreloader", "PreloadOne",
			ctx.Err(), map[string]interface{}{"url": rawURL})
	case <-timer.C:
		return nil, errors.NewTimeoutContextError("preload wait timed out", "usecase", "ImagePreloader", "PreloadOne",
			context.DeadlineExceeded, map[string]interface{}{"url": rawURL, "timeout": opts.Timeout.String()})
	}
}

func (p *ImagePreloader) fetchAndStore(ctx context.Context, key string) (*domain.CacheEntry, error) {
	parsed, err := domain.ValidateImageURL(key)
	if err != nil {
		p.recordPreload(true)
		return nil, err
	}

	result, err := p.fetcher.FetchImage(ctx, parsed, domain.NewImageFetchOptions())
	if err != nil {
		p.recordPreload(true)
		logger.SafeInfoContext(ctx, "preload fetch failed", "url", key, "error", err)
		return nil, err
	}

	p.cache.Put(key, result)
	p.recordPreload(false)
	return &domain.CacheEntry{Key: key, Handle: result, LastAccess: time.Now()}, nil
}

func (p *ImagePreloader) recordPreload(failed bool) {
	if p.collector != nil {
		p.collector.RecordPreload(failed)
	}
}

// PreloadMany preloads a batch in chunks of MaxConcurrent. URLs within a
// chunk run concurrently; the next chunk starts only after every member of
// the previous chunk settles. Progress fires after every settled URL,
// success or failure; the returned entries keep input order with failures
// omitted.
func (p *ImagePreloader) PreloadMany(ctx context.Context, rawURLs []string, opts *domain.BatchPreloadOptions) []*domain.CacheEntry {
	if opts == nil {
		opts = domain.NewBatchPreloadOptions()
	}
	chunkSize := opts.MaxConcurrent
	if chunkSize <= 0 {
		chunkSize = 1
	}

	total := len(rawURLs)
	settled := make([]*domain.CacheEntry, total)

	var progress batchProgress
	progress.total = total
	progress.onProgress = opts.OnProgress

	for start := 0; start < total; start += chunkSize {
		end := start + chunkSize
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				entry, err := p.PreloadOne(ctx, rawURLs[i], domain.NewPreloadOptions())
				if err == nil {
					settled[i] = entry
				}
				progress.step()
			}(i)
		}
		wg.Wait()
	}

	results := make([]*domain.CacheEntry, 0, total)
	for _, entry := range settled {
		if entry != nil {
			results = append(results, entry)
		}
	}
	return results
}

// batchProgress serializes progress callbacks so completed counts are
// strictly monotonic even when chunk members settle simultaneously.
type batchProgress struct {
	mu         sync.Mutex
	completed  int
	total      int
	onProgress domain.ProgressFunc
}

func (b *batchProgress) step() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completed++
	if b.onProgress != nil {
		b.onProgress(b.completed, b.total)
	}
}

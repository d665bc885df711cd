package metrics

import (
	"sync"
	"time"
)

// DeliverySnapshot represents a point-in-time snapshot of delivery metrics.
type DeliverySnapshot struct {
	ProbeRuns          int64         `json:"probe_runs"`
	ProbeFailures      int64         `json:"probe_failures"`
	AverageProbeTime   time.Duration `json:"average_probe_time"`
	CacheHits          int64         `json:"cache_hits"`
	CacheMisses        int64         `json:"cache_misses"`
	CacheHitRate       float64       `json:"cache_hit_rate"`
	LayerLoads         int64         `json:"layer_loads"`
	LayerLoadFailures  int64         `json:"layer_load_failures"`
	PreloadsCompleted  int64         `json:"preloads_completed"`
	PreloadsFailed     int64         `json:"preloads_failed"`
}

// DeliveryMetricsCollector provides thread-safe counters for the image
// delivery pipeline: probe runs, cache effectiveness, and layer loads.
type DeliveryMetricsCollector struct {
	probeRuns         int64
	probeFailures     int64
	totalProbeTime    time.Duration
	probeTimeCount    int64
	cacheHits         int64
	cacheMisses       int64
	layerLoads        int64
	layerLoadFailures int64
	preloadsCompleted int64
	preloadsFailed    int64
	mutex             sync.RWMutex
}

// NewDeliveryMetricsCollector creates a new DeliveryMetricsCollector.
func NewDeliveryMetricsCollector() *DeliveryMetricsCollector {
	return &DeliveryMetricsCollector{}
}

// RecordProbe records one completed probe run and its duration.
func (c *DeliveryMetricsCollector) RecordProbe(duration time.Duration, failed bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.probeRuns++
	if failed {
		c.probeFailures++
	}
	c.totalProbeTime += duration
	c.probeTimeCount++
}

// RecordCacheHit increments the cache hit counter.
func (c *DeliveryMetricsCollector) RecordCacheHit() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cacheHits++
}

// RecordCacheMiss increments the cache miss counter.
func (c *DeliveryMetricsCollector) RecordCacheMiss() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cacheMisses++
}

// RecordLayerLoad records one settled image layer fetch.
func (c *DeliveryMetricsCollector) RecordLayerLoad(failed bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.layerLoads++
	if failed {
		c.layerLoadFailures++
	}
}

// RecordPreload records one settled preload.
func (c *DeliveryMetricsCollector) RecordPreload(failed bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if failed {
		c.preloadsFailed++
	} else {
		c.preloadsCompleted++
	}
}

// Reset clears all metrics back to initial state.
func (c *DeliveryMetricsCollector) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.probeRuns = 0
	c.probeFailures = 0
	c.totalProbeTime = 0
	c.probeTimeCount = 0
	c.cacheHits = 0
	c.cacheMisses = 0
	c.layerLoads = 0
	c.layerLoadFailures = 0
	c.preloadsCompleted = 0
	c.preloadsFailed = 0
}

// GetSnapshot returns a point-in-time snapshot of all metrics.
func (c *DeliveryMetricsCollector) GetSnapshot() DeliverySnapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var avgProbe time.Duration
	if c.probeTimeCount > 0 {
		avgProbe = c.totalProbeTime / time.Duration(c.probeTimeCount)
	}

	var hitRate float64
	if lookups := c.cacheHits + c.cacheMisses; lookups > 0 {
		hitRate = float64(c.cacheHits) / float64(lookups)
	}

	return DeliverySnapshot{
		ProbeRuns:         c.probeRuns,
		ProbeFailures:     c.probeFailures,
		AverageProbeTime:  avgProbe,
		CacheHits:         c.cacheHits,
		CacheMisses:       c.cacheMisses,
		CacheHitRate:      hitRate,
		LayerLoads:        c.layerLoads,
		LayerLoadFailures: c.layerLoadFailures,
		PreloadsCompleted: c.preloadsCompleted,
		PreloadsFailed:    c.preloadsFailed,
	}
}

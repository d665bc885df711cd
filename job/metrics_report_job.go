package job

import (
	"context"
	"time"

	"github.com/WhoamiI00/neo-pins-sub000/utils/logger"
	"github.com/WhoamiI00/neo-pins-sub000/utils/metrics"
)

// NewMetricsReportJob periodically logs a delivery metrics snapshot so
// operators can watch cache effectiveness and probe health without a
// metrics backend.
func NewMetricsReportJob(collector *metrics.DeliveryMetricsCollector, interval time.Duration) Job {
	return Job{
		Name:     "delivery_metrics_report",
		Interval: interval,
		Timeout:  5 * time.Second,
		Fn: func(ctx context.Context) error {
			snap := collector.GetSnapshot()
			logger.SafeInfoContext(ctx, "delivery metrics",
				"probe_runs", snap.ProbeRuns,
				"probe_failures", snap.ProbeFailures,
				"avg_probe_time", snap.AverageProbeTime.String(),
				"cache_hit_rate", snap.CacheHitRate,
				"layer_loads", snap.LayerLoads,
				"layer_load_failures", snap.LayerLoadFailures,
				"preloads_completed", snap.PreloadsCompleted,
				"preloads_failed", snap.PreloadsFailed,
			)
			return nil
		},
	}
}

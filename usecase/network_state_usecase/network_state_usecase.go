// Package network_state_usecase owns the process-wide network state: it is
// the single writer, schedules assessments, and hands consumers consistent
// snapshots.
package network_state_usecase

import (
	"context"
	"sync"
	"time"

	"github.com/VividCortex/ewma"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
	"github.com/WhoamiI00/neo-pins-sub000/port/probe_port"
	"github.com/WhoamiI00/neo-pins-sub000/utils/logger"
	"github.com/WhoamiI00/neo-pins-sub000/utils/metrics"
)

// DefaultReassessInterval is the minimum spacing between periodic
// assessments. The interval is checked opportunistically by the scheduler
// job rather than enforced by a dedicated timer.
const DefaultReassessInterval = 120 * time.Second

// NetworkStateManager owns the NetworkState singleton. All reads go through
// Snapshot and observe a fully-formed state; all writes happen here, one
// assessment at a time.
type NetworkStateManager struct {
	probe            probe_port.NetworkProbePort
	collector        *metrics.DeliveryMetricsCollector
	reassessInterval time.Duration

	mu             sync.RWMutex
	state          domain.NetworkState
	online         bool
	assessing      bool
	pending        bool
	forcedQuality  bool
	lastAssessment time.Time
	smoothedMbps   ewma.MovingAverage
}

// NewNetworkStateManager creates a manager seeded with the default state.
// collector may be nil.
func NewNetworkStateManager(probe probe_port.NetworkProbePort, collector *metrics.DeliveryMetricsCollector, reassessInterval time.Duration) *NetworkStateManager {
	if reassessInterval <= 0 {
		reassessInterval = DefaultReassessInterval
	}
	return &NetworkStateManager{
		probe:            probe,
		collector:        collector,
		reassessInterval: reassessInterval,
		state:            domain.DefaultNetworkState(),
		online:           true,
		smoothedMbps:     ewma.NewMovingAverage(),
	}
}

// Snapshot returns a copy of the current state. Safe for concurrent use.
func (m *NetworkStateManager) Snapshot() domain.NetworkState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Online reports the last known platform connectivity.
func (m *NetworkStateManager) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// SmoothedBandwidthMbps is an exponentially weighted average of measured
// bandwidth across assessments. Observability only; classification always
// uses the latest point-in-time metrics.
func (m *NetworkStateManager) SmoothedBandwidthMbps() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.smoothedMbps.Value()
}

// Reassess runs one probe + classification cycle and replaces the state.
// If an assessment is already in flight the call returns immediately and a
// fresh assessment runs after the in-flight one completes; two assessments
// never interleave their measurement or write phases.
func (m *NetworkStateManager) Reassess(ctx context.Context) error {
	m.mu.Lock()
	if m.assessing {
		m.pending = true
		m.mu.Unlock()
		return nil
	}
	m.assessing = true
	m.state.IsAssessing = true
	m.mu.Unlock()

	for {
		m.runAssessment(ctx)

		m.mu.Lock()
		if !m.pending {
			m.assessing = false
			m.state.IsAssessing = false
			m.mu.Unlock()
			return nil
		}
		m.pending = false
		m.mu.Unlock()
	}
}

// runAssessment probes, classifies, and atomically replaces the state. A
// probe failure is absorbed by substituting the documented default metrics.
func (m *NetworkStateManager) runAssessment(ctx context.Context) {
	start := time.Now()

	probed, err := m.probe.Probe(ctx)
	if err != nil {
		logger.SafeErrorContext(ctx, "network probe failed, using default metrics", "error", err)
		fallback := domain.DefaultNetworkMetrics()
		probed = &fallback
	}
	if m.collector != nil {
		m.collector.RecordProbe(time.Since(start), err != nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	speed := domain.ClassifySpeed(*probed, m.online)
	quality := domain.ClassifyQuality(*probed, speed)

	m.state = domain.NetworkState{
		Speed:          speed,
		Quality:        quality,
		Metrics:        *probed,
		IsAssessing:    true, // cleared by Reassess once no rerun is pending
		LastAssessment: time.Now(),
	}
	m.forcedQuality = false
	m.lastAssessment = m.state.LastAssessment
	m.smoothedMbps.Add(probed.BandwidthMbps)

	logger.SafeInfoContext(ctx, "network assessment completed",
		"speed", string(speed),
		"quality", string(quality),
		"bandwidth_mbps", probed.BandwidthMbps,
		"latency_ms", probed.LatencyMs,
	)
}

// MaybeReassess runs Reassess when the periodic cadence has elapsed. Called
// opportunistically by the scheduler job.
func (m *NetworkStateManager) MaybeReassess(ctx context.Context) error {
	m.mu.RLock()
	due := time.Since(m.lastAssessment) >= m.reassessInterval
	online := m.online
	m.mu.RUnlock()

	if !due || !online {
		return nil
	}
	return m.Reassess(ctx)
}

// ForceQuality overrides the quality tier only, leaving speed and metrics
// untouched. The override is implicitly cleared by the next completed
// assessment.
func (m *NetworkStateManager) ForceQuality(q domain.QualityTier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Quality = q
	m.forcedQuality = true
}

// QualityForced reports whether a manual override is currently active.
func (m *NetworkStateManager) QualityForced() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.forcedQuality
}

// SetOnline applies a platform connectivity transition. Going offline is
// synchronous and touches no network: speed and quality drop immediately.
// Coming back online triggers a fresh assessment.
func (m *NetworkStateManager) SetOnline(ctx context.Context, online bool) error {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	if !online {
		m.state.Speed = domain.SpeedOffline
		m.state.Quality = domain.QualityMinimal
		m.mu.Unlock()
		logger.SafeInfoContext(ctx, "connectivity lost, state degraded to offline")
		return nil
	}
	m.mu.Unlock()

	if !wasOnline {
		logger.SafeInfoContext(ctx, "connectivity restored, reassessing")
		return m.Reassess(ctx)
	}
	return nil
}

// OptimalImageParams computes the image request parameters for a display
// width under the current quality tier and data-saver preference.
func (m *NetworkStateManager) OptimalImageParams(baseWidth int) domain.ImageParams {
	state := m.Snapshot()
	return domain.OptimalImageParams(state.Quality, state.Metrics.SaveDataRequested, baseWidth)
}

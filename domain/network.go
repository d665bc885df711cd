package domain

import "time"

// SpeedTier is the coarse classification of current network conditions.
type SpeedTier string

const (
	SpeedFast    SpeedTier = "fast"
	SpeedMedium  SpeedTier = "medium"
	SpeedSlow    SpeedTier = "slow"
	SpeedOffline SpeedTier = "offline"
)

// QualityTier is the coarse classification of how rich a resource the
// client should request.
type QualityTier string

const (
	QualityPremium  QualityTier = "premium"
	QualityStandard QualityTier = "standard"
	QualityBasic    QualityTier = "basic"
	QualityMinimal  QualityTier = "minimal"
)

// IsValidQualityTier reports whether s names a known quality tier.
func IsValidQualityTier(s string) bool {
	switch QualityTier(s) {
	case QualityPremium, QualityStandard, QualityBasic, QualityMinimal:
		return true
	}
	return false
}

// ConnectionInfo carries platform-reported connection hints. Platforms that
// expose nothing use DefaultConnectionInfo.
type ConnectionInfo struct {
	Type          string `json:"type"`           // "wifi", "cellular", "unknown", ...
	EffectiveType string `json:"effective_type"` // "4g", "3g", "2g", "slow-2g", "unknown"
	SaveData      bool   `json:"save_data"`
}

// DefaultConnectionInfo is what we assume when the platform exposes no
// connection information object.
func DefaultConnectionInfo() ConnectionInfo {
	return ConnectionInfo{Type: "unknown", EffectiveType: "3g", SaveData: false}
}

// Bandwidth clamp bounds in Mbps. Measurements outside this range are
// treated as measurement noise.
const (
	MinBandwidthMbps = 0.1
	MaxBandwidthMbps = 100.0
)

// ClampBandwidth clamps a measured bandwidth to the supported range.
func ClampBandwidth(mbps float64) float64 {
	if mbps < MinBandwidthMbps {
		return MinBandwidthMbps
	}
	if mbps > MaxBandwidthMbps {
		return MaxBandwidthMbps
	}
	return mbps
}

// NetworkMetrics is one point-in-time measurement of the client's effective
// network quality. It is recomputed on every assessment.
type NetworkMetrics struct {
	BandwidthMbps     float64 `json:"bandwidth_mbps"`
	LatencyMs         int     `json:"latency_ms"`
	JitterMs          int     `json:"jitter_ms"`
	PacketLossPct     float64 `json:"packet_loss_pct"` // fraction [0,1] of failed latency probes
	ConnectionType    string  `json:"connection_type"`
	EffectiveType     string  `json:"effective_type"`
	SaveDataRequested bool    `json:"save_data_requested"`
}

// DefaultNetworkMetrics is the documented fallback used when a whole probe
// run fails: a conservative mid-range connection.
func DefaultNetworkMetrics() NetworkMetrics {
	return NetworkMetrics{
		BandwidthMbps:     1.0,
		LatencyMs:         100,
		JitterMs:          10,
		PacketLossPct:     0,
		ConnectionType:    "unknown",
		EffectiveType:     "3g",
		SaveDataRequested: false,
	}
}

// NetworkState is the process-wide view of current network conditions.
// It is owned and mutated by a single NetworkStateManager; all other
// components read copies.
type NetworkState struct {
	Speed          SpeedTier      `json:"speed"`
	Quality        QualityTier    `json:"quality"`
	Metrics        NetworkMetrics `json:"metrics"`
	IsAssessing    bool           `json:"is_assessing"`
	LastAssessment time.Time      `json:"last_assessment"`
}

// DefaultNetworkState returns the state assumed at process start, before the
// first assessment has completed. Speed and quality are derived from
// DefaultNetworkMetrics so the derivation invariant holds from the start.
func DefaultNetworkState() NetworkState {
	m := DefaultNetworkMetrics()
	speed := ClassifySpeed(m, true)
	return NetworkState{
		Speed:   speed,
		Quality: ClassifyQuality(m, speed),
		Metrics: m,
	}
}

package domain

// ClassifySpeed maps raw metrics to a speed tier. The checks are ordered;
// the first match wins:
//
//  1. offline when the platform reports no connectivity
//  2. slow when the user requested data saving, regardless of measurements
//  3. fast for low-latency 4g links with real bandwidth
//  4. medium for everything usable
//  5. slow otherwise
func ClassifySpeed(m NetworkMetrics, isOnline bool) SpeedTier {
	if !isOnline {
		return SpeedOffline
	}
	if m.SaveDataRequested {
		return SpeedSlow
	}
	if m.BandwidthMbps >= 5 && m.LatencyMs < 100 && m.EffectiveType == "4g" {
		return SpeedFast
	}
	if m.BandwidthMbps >= 1.5 && m.LatencyMs < 300 {
		return SpeedMedium
	}
	return SpeedSlow
}

// ClassifyQuality maps metrics and an already-derived speed tier to the
// quality tier used for image requests. Data-saver forces basic unless the
// client is offline, which forces minimal.
func ClassifyQuality(m NetworkMetrics, speed SpeedTier) QualityTier {
	if speed == SpeedOffline {
		return QualityMinimal
	}
	if m.SaveDataRequested {
		return QualityBasic
	}
	switch speed {
	case SpeedFast:
		if m.BandwidthMbps >= 10 {
			return QualityPremium
		}
		return QualityStandard
	case SpeedMedium:
		return QualityStandard
	default:
		return QualityBasic
	}
}

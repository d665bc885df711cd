package probe_port

import (
	"context"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
)

// NetworkProbePort defines the interface for point-in-time network
// measurements. Implementations are stateless; serialization of concurrent
// probes is the caller's responsibility.
type NetworkProbePort interface {
	// Probe measures bandwidth, latency, jitter, and connection hints.
	Probe(ctx context.Context) (*domain.NetworkMetrics, error)
}

// ConnectionInfoProvider is an optional capability exposing platform
// connection hints. Absence is modeled by a nil provider; consumers then
// fall back to domain.DefaultConnectionInfo.
type ConnectionInfoProvider interface {
	ConnectionInfo() domain.ConnectionInfo
}

package probe_gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
)

// speedServer serves "bytes" query parameter sized payloads and counts hits.
func speedServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		size, _ := strconv.Atoi(r.URL.Query().Get("bytes"))
		if size <= 0 {
			size = 32
		}
		w.WriteHeader(http.StatusOK)
		w.Write(make([]byte, size))
	}))
}

func TestProbe_HealthyEndpoint(t *testing.T) {
	var hits atomic.Int64
	server := speedServer(t, &hits)
	defer server.Close()

	gw := NewNetworkProbeGateway(server.Client(), server.URL, server.URL, nil)

	metrics, err := gw.Probe(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, metrics.BandwidthMbps, domain.MinBandwidthMbps)
	assert.LessOrEqual(t, metrics.BandwidthMbps, domain.MaxBandwidthMbps)
	assert.GreaterOrEqual(t, metrics.LatencyMs, 0)
	assert.Less(t, metrics.LatencyMs, 1000, "local round trips should be fast")
	assert.GreaterOrEqual(t, metrics.JitterMs, 0)
	assert.Equal(t, 0.0, metrics.PacketLossPct)

	// Default hints when no provider is configured.
	assert.Equal(t, "unknown", metrics.ConnectionType)
	assert.Equal(t, "3g", metrics.EffectiveType)
	assert.False(t, metrics.SaveDataRequested)

	// 2 bandwidth payloads + 5 latency pings.
	assert.Equal(t, int64(7), hits.Load())
}

func TestProbe_AllRequestsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	gw := NewNetworkProbeGateway(server.Client(), server.URL, server.URL, nil)

	metrics, err := gw.Probe(context.Background())
	require.NoError(t, err, "request failures are absorbed, not surfaced")

	// Bandwidth floors at the clamp minimum.
	assert.Equal(t, domain.MinBandwidthMbps, metrics.BandwidthMbps)

	// Every latency probe takes the fixed penalty: mean 1000, stddev 0.
	assert.Equal(t, 1000, metrics.LatencyMs)
	assert.Equal(t, 0, metrics.JitterMs)
	assert.Equal(t, 1.0, metrics.PacketLossPct)
}

func TestProbe_PartialLatencyFailures(t *testing.T) {
	var ping atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("bytes") != "" {
			w.Write(make([]byte, 1024))
			return
		}
		// Fail latency probes 2 and 4.
		n := ping.Add(1)
		if n == 2 || n == 4 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	gw := NewNetworkProbeGateway(server.Client(), server.URL, server.URL, nil)

	metrics, err := gw.Probe(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 0.4, metrics.PacketLossPct, 1e-9)
	// Two 1000ms penalties pull the mean well up and spread the samples.
	assert.Greater(t, metrics.LatencyMs, 300)
	assert.Greater(t, metrics.JitterMs, 0)
}

func TestProbe_UsesConnectionInfoProvider(t *testing.T) {
	var hits atomic.Int64
	server := speedServer(t, &hits)
	defer server.Close()

	provider := staticProvider{info: domain.ConnectionInfo{Type: "cellular", EffectiveType: "4g", SaveData: true}}
	gw := NewNetworkProbeGateway(server.Client(), server.URL, server.URL, provider)

	metrics, err := gw.Probe(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cellular", metrics.ConnectionType)
	assert.Equal(t, "4g", metrics.EffectiveType)
	assert.True(t, metrics.SaveDataRequested)
}

func TestProbe_CancelledContext(t *testing.T) {
	gw := NewNetworkProbeGateway(nil, "https://speed.invalid", "https://speed.invalid", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Probe(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProbe_SlowPayloadSkipsLargerTests(t *testing.T) {
	// Not exercising the real 5s threshold; verify the loop accounting by
	// checking that a single payload response still yields a clamped value.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("bytes") != "" {
			// Serve far less than requested; throughput math must use
			// actual bytes read, not the requested size.
			w.Write(make([]byte, 128))
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	gw := NewNetworkProbeGateway(server.Client(), server.URL, server.URL, nil)

	metrics, err := gw.Probe(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, metrics.BandwidthMbps, domain.MinBandwidthMbps)
	assert.LessOrEqual(t, metrics.BandwidthMbps, domain.MaxBandwidthMbps)
}

type staticProvider struct {
	info domain.ConnectionInfo
}

func (p staticProvider) ConnectionInfo() domain.ConnectionInfo {
	return p.info
}

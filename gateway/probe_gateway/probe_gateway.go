package probe_gateway

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
	"github.com/WhoamiI00/neo-pins-sub000/port/probe_port"
	"github.com/WhoamiI00/neo-pins-sub000/utils/logger"
)

// Synthetic payload sizes for the bandwidth test, smallest first. The
// larger tests are skipped once any single test runs past the abort
// threshold, which already signals a very slow link.
var bandwidthPayloadSizes = []int{50 * 1024, 200 * 1024}

const (
	// singleTestAbort aborts remaining bandwidth tests when one payload
	// takes this long.
	singleTestAbort = 5 * time.Second

	// latencyProbeCount is the number of sequential round-trip samples.
	latencyProbeCount = 5

	// failedProbePenalty is substituted for the round-trip time of a
	// failed latency probe. A failure never aborts the measurement.
	failedProbePenalty = 1000 * time.Millisecond
)

// NetworkProbeGateway implements probe_port.NetworkProbePort against a
// speed-test endpoint that serves synthetic payloads of a requested size.
// One Probe call is one full point-in-time measurement; the gateway keeps
// no state between calls. Callers must not run two probes concurrently.
type NetworkProbeGateway struct {
	httpClient   *http.Client
	bandwidthURL string // endpoint honoring a "bytes" query parameter
	latencyURL   string // endpoint serving a tiny response
	provider     probe_port.ConnectionInfoProvider
}

// NewNetworkProbeGateway creates a probe gateway. provider may be nil when
// the platform exposes no connection information.
func NewNetworkProbeGateway(httpClient *http.Client, bandwidthURL, latencyURL string, provider probe_port.ConnectionInfoProvider) *NetworkProbeGateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &NetworkProbeGateway{
		httpClient:   httpClient,
		bandwidthURL: bandwidthURL,
		latencyURL:   latencyURL,
		provider:     provider,
	}
}

// Probe runs the bandwidth and latency measurements sequentially and reads
// platform connection hints. Individual request failures are absorbed into
// penalty or floor values; only context cancellation is surfaced as an
// error.
func (g *NetworkProbeGateway) Probe(ctx context.Context) (*domain.NetworkMetrics, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	bandwidth := g.measureBandwidth(ctx)
	latency, jitter, loss := g.measureLatency(ctx)

	info := domain.DefaultConnectionInfo()
	if g.provider != nil {
		info = g.provider.ConnectionInfo()
	}

	return &domain.NetworkMetrics{
		BandwidthMbps:     bandwidth,
		LatencyMs:         latency,
		JitterMs:          jitter,
		PacketLossPct:     loss,
		ConnectionType:    info.Type,
		EffectiveType:     info.EffectiveType,
		SaveDataRequested: info.SaveData,
	}, nil
}

// measureBandwidth fetches the synthetic payloads sequentially and derives
// throughput from total bytes over total wall time. All-failed runs report
// the clamped minimum rather than an error.
func (g *NetworkProbeGateway) measureBandwidth(ctx context.Context) float64 {
	var (
		totalBytes   int64
		totalSeconds float64
	)

	for _, size := range bandwidthPayloadSizes {
		n, elapsed, err := g.fetchPayload(ctx, size)
		if err != nil {
			logger.SafeInfoContext(ctx, "bandwidth test payload failed",
				"payload_bytes", size, "error", err)
			continue
		}

		totalBytes += n
		totalSeconds += elapsed.Seconds()

		if elapsed > singleTestAbort {
			// Very slow link; larger payloads would only waste data.
			break
		}
	}

	if totalBytes == 0 || totalSeconds <= 0 {
		return domain.MinBandwidthMbps
	}

	mbps := float64(totalBytes) * 8 / (totalSeconds * 1_000_000)
	return domain.ClampBandwidth(mbps)
}

func (g *NetworkProbeGateway) fetchPayload(ctx context.Context, size int) (int64, time.Duration, error) {
	url := fmt.Sprintf("%s?bytes=%d&cb=%d", g.bandwidthURL, size, time.Now().UnixNano())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	n, err := io.Copy(io.Discard, resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return 0, 0, err
	}
	return n, elapsed, nil
}

// measureLatency issues sequential tiny requests and returns the mean
// round-trip time, the population standard deviation, and the fraction of
// failed probes. A failed probe contributes the penalty value instead of
// aborting the run.
func (g *NetworkProbeGateway) measureLatency(ctx context.Context) (latencyMs, jitterMs int, lossPct float64) {
	samples := make([]float64, 0, latencyProbeCount)
	failures := 0

	for i := 0; i < latencyProbeCount; i++ {
		rtt, err := g.pingOnce(ctx, i)
		if err != nil {
			samples = append(samples, float64(failedProbePenalty.Milliseconds()))
			failures++
			continue
		}
		samples = append(samples, float64(rtt.Milliseconds()))
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, s := range samples {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(samples))

	return int(math.Round(mean)), int(math.Round(math.Sqrt(variance))), float64(failures) / float64(latencyProbeCount)
}

func (g *NetworkProbeGateway) pingOnce(ctx context.Context, seq int) (time.Duration, error) {
	url := fmt.Sprintf("%s?cb=%d-%d", g.latencyURL, time.Now().UnixNano(), seq)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return time.Since(start), nil
}

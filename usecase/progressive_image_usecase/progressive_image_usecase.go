// Package progressive_image_usecase drives the per-image upgrade state
// machine: a cheap base encoding first, then richer encodings as the
// current network quality allows.
package progressive_image_usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
	"github.com/WhoamiI00/neo-pins-sub000/port/image_fetch_port"
	"github.com/WhoamiI00/neo-pins-sub000/utils/logger"
	"github.com/WhoamiI00/neo-pins-sub000/utils/metrics"
)

// NetworkStateReader is the loader's read-only view of the shared network
// state.
type NetworkStateReader interface {
	Snapshot() domain.NetworkState
	OptimalImageParams(baseWidth int) domain.ImageParams
}

// premiumBandwidthFloor is the measured bandwidth (Mbps) below which the
// premium layer is never requested, even on a fast premium-quality link.
const premiumBandwidthFloor = 5.0

const (
	defaultEnhanceDebounce = 100 * time.Millisecond
	defaultPremiumDebounce = 200 * time.Millisecond
)

// LoaderConfig configures one ProgressiveLoader instance.
type LoaderConfig struct {
	// BaseWidth is the target display width in CSS pixels.
	BaseWidth int

	// Priority starts the base fetch immediately instead of waiting for
	// EnterViewport.
	Priority bool

	// Placeholder is shown until the first layer loads ("" for none).
	Placeholder string

	// Debounce delays before the enhancement and premium upgrade checks.
	// Zero means the package defaults.
	EnhanceDebounce time.Duration
	PremiumDebounce time.Duration

	// OnDisplay fires whenever the displayed source upgrades.
	OnDisplay func(layer domain.LayerName, url string)

	// OnFailure fires once, only when every layer including the
	// unmodified original URL has failed.
	OnFailure func(err error)

	// Collector may be nil.
	Collector *metrics.DeliveryMetricsCollector
}

// ProgressiveLoader loads one logical image in up to three layers,
// base < enhancement < premium. Each layer moves pending → loading →
// loaded|failed exactly once; a failed layer is never retried within the
// instance. URLs outside the transformable object store get a single
// best-effort layer.
type ProgressiveLoader struct {
	fetcher       image_fetch_port.ImageFetchPort
	network       NetworkStateReader
	originalURL   string
	transformable bool
	cfg           LoaderConfig

	mu             sync.Mutex
	layers         map[domain.LayerName]*domain.ImageLayerState
	displayedURL   string
	displayedRank  int
	started        bool
	originalFailed bool
	exhausted      bool
}

// NewProgressiveLoader creates a loader for one image URL. Nothing is
// fetched until Start (priority) or EnterViewport (lazy).
func NewProgressiveLoader(fetcher image_fetch_port.ImageFetchPort, network NetworkStateReader, rawURL string, cfg LoaderConfig) *ProgressiveLoader {
	if cfg.BaseWidth <= 0 {
		cfg.BaseWidth = 400
	}
	if cfg.EnhanceDebounce <= 0 {
		cfg.EnhanceDebounce = defaultEnhanceDebounce
	}
	if cfg.PremiumDebounce <= 0 {
		cfg.PremiumDebounce = defaultPremiumDebounce
	}

	l := &ProgressiveLoader{
		fetcher:       fetcher,
		network:       network,
		originalURL:   rawURL,
		transformable: domain.IsTransformableURL(rawURL),
		cfg:           cfg,
		displayedURL:  cfg.Placeholder,
		layers: map[domain.LayerName]*domain.ImageLayerState{
			domain.LayerBase:        {Name: domain.LayerBase, Status: domain.LayerPending},
			domain.LayerEnhancement: {Name: domain.LayerEnhancement, Status: domain.LayerPending},
			domain.LayerPremium:     {Name: domain.LayerPremium, Status: domain.LayerPending},
		},
	}
	return l
}

// Start begins loading for priority instances. Lazy instances ignore Start
// and wait for EnterViewport.
func (l *ProgressiveLoader) Start(ctx context.Context) {
	if l.cfg.Priority {
		l.begin(ctx)
	}
}

// EnterViewport begins loading for lazy instances once the caller's
// intersection detection reports the image near the viewport. Idempotent.
func (l *ProgressiveLoader) EnterViewport(ctx context.Context) {
	l.begin(ctx)
}

func (l *ProgressiveLoader) begin(ctx context.Context) {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	l.startLayer(ctx, domain.LayerBase, l.baseTargetURL())
}

func (l *ProgressiveLoader) baseTargetURL() string {
	if !l.transformable {
		// Foreign host: single-layer best effort on the unmodified URL.
		return l.originalURL
	}
	params := domain.LayerParams(domain.LayerBase, l.cfg.BaseWidth, domain.ImageParams{})
	return domain.TransformURL(l.originalURL, params)
}

// startLayer transitions a pending layer to loading and fetches it in the
// background. The transition happens exactly once per layer.
func (l *ProgressiveLoader) startLayer(ctx context.Context, name domain.LayerName, targetURL string) {
	l.mu.Lock()
	layer := l.layers[name]
	if layer.Status != domain.LayerPending {
		l.mu.Unlock()
		return
	}
	layer.Status = domain.LayerLoading
	layer.TargetURL = targetURL
	l.mu.Unlock()

	go l.fetchLayer(ctx, name, targetURL)
}

func (l *ProgressiveLoader) fetchLayer(ctx context.Context, name domain.LayerName, targetURL string) {
	parsed, err := domain.ValidateImageURL(targetURL)
	if err == nil {
		_, err = l.fetcher.FetchImage(ctx, parsed, domain.NewImageFetchOptions())
	}

	if l.cfg.Collector != nil {
		l.cfg.Collector.RecordLayerLoad(err != nil)
	}

	if err != nil {
		l.layerFailed(ctx, name, err)
		return
	}
	l.layerLoaded(ctx, name, targetURL)
}

func (l *ProgressiveLoader) layerLoaded(ctx context.Context, name domain.LayerName, targetURL string) {
	l.mu.Lock()
	l.layers[name].Status = domain.LayerLoaded

	upgraded := false
	if domain.LayerRank(name) > l.displayedRank {
		l.displayedRank = domain.LayerRank(name)
		l.displayedURL = targetURL
		upgraded = true
	}
	onDisplay := l.cfg.OnDisplay
	l.mu.Unlock()

	if upgraded && onDisplay != nil {
		onDisplay(name, targetURL)
	}

	if !l.transformable {
		return
	}

	switch name {
	case domain.LayerBase:
		time.AfterFunc(l.cfg.EnhanceDebounce, func() { l.maybeStartEnhancement(ctx) })
	case domain.LayerEnhancement:
		time.AfterFunc(l.cfg.PremiumDebounce, func() { l.maybeStartPremium(ctx) })
	}
}

func (l *ProgressiveLoader) layerFailed(ctx context.Context, name domain.LayerName, cause error) {
	l.mu.Lock()
	l.layers[name].Status = domain.LayerFailed
	l.mu.Unlock()

	logger.SafeInfoContext(ctx, "image layer failed",
		"layer", string(name), "url", l.originalURL, "error", cause)

	switch name {
	case domain.LayerBase:
		if l.transformable {
			// Last resort before surfacing an error: the unmodified URL.
			go l.fetchOriginal(ctx)
			return
		}
		l.surfaceFailure(cause)
	case domain.LayerEnhancement:
		// Premium eligibility is independent of the enhancement outcome;
		// the upgrade check still runs.
		time.AfterFunc(l.cfg.PremiumDebounce, func() { l.maybeStartPremium(ctx) })
	}
}

func (l *ProgressiveLoader) fetchOriginal(ctx context.Context) {
	parsed, err := domain.ValidateImageURL(l.originalURL)
	if err == nil {
		_, err = l.fetcher.FetchImage(ctx, parsed, domain.NewImageFetchOptions())
	}

	l.mu.Lock()
	if err != nil {
		l.originalFailed = true
		l.mu.Unlock()
		l.surfaceFailure(err)
		return
	}
	if l.displayedRank == 0 {
		l.displayedURL = l.originalURL
	}
	onDisplay := l.cfg.OnDisplay
	l.mu.Unlock()

	if onDisplay != nil {
		onDisplay(domain.LayerBase, l.originalURL)
	}
}

// maybeStartEnhancement starts the enhancement layer when the network
// currently supports anything beyond the bare minimum. Parameters follow
// the network state at this moment, not at mount time.
func (l *ProgressiveLoader) maybeStartEnhancement(ctx context.Context) {
	state := l.network.Snapshot()
	if state.Quality == domain.QualityMinimal || state.Speed == domain.SpeedOffline {
		return
	}

	params := l.network.OptimalImageParams(l.cfg.BaseWidth)
	l.startLayer(ctx, domain.LayerEnhancement, domain.TransformURL(l.originalURL, params))
}

// maybeStartPremium starts the premium layer only on a fast premium-quality
// link with real measured headroom.
func (l *ProgressiveLoader) maybeStartPremium(ctx context.Context) {
	state := l.network.Snapshot()
	if state.Quality != domain.QualityPremium ||
		state.Speed != domain.SpeedFast ||
		state.Metrics.BandwidthMbps <= premiumBandwidthFloor {
		return
	}

	params := domain.LayerParams(domain.LayerPremium, l.cfg.BaseWidth, domain.ImageParams{})
	l.startLayer(ctx, domain.LayerPremium, domain.TransformURL(l.originalURL, params))
}

func (l *ProgressiveLoader) surfaceFailure(cause error) {
	l.mu.Lock()
	if l.exhausted {
		l.mu.Unlock()
		return
	}
	l.exhausted = true
	onFailure := l.cfg.OnFailure
	l.mu.Unlock()

	if onFailure != nil {
		onFailure(fmt.Errorf("all layers failed for %s: %w", l.originalURL, cause))
	}
}

// DisplayedURL returns the current best available source: the richest
// loaded layer, the unmodified original after a base failure, or the
// placeholder when nothing has loaded yet.
func (l *ProgressiveLoader) DisplayedURL() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.displayedURL
}

// LayerStatus returns the load status of one layer.
func (l *ProgressiveLoader) LayerStatus(name domain.LayerName) domain.LayerStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.layers[name].Status
}

// LayerTargetURL returns the URL a layer was (or will be) fetched from.
func (l *ProgressiveLoader) LayerTargetURL(name domain.LayerName) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.layers[name].TargetURL
}

// Exhausted reports whether every layer, including the unmodified
// original, has failed.
func (l *ProgressiveLoader) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exhausted
}

// Package di wires the application's gateways, usecases, and shared
// infrastructure into one component graph.
package di

import (
	"net/http"

	"github.com/WhoamiI00/neo-pins-sub000/config"
	"github.com/WhoamiI00/neo-pins-sub000/driver/preload_cache"
	"github.com/WhoamiI00/neo-pins-sub000/gateway/image_fetch_gateway"
	"github.com/WhoamiI00/neo-pins-sub000/gateway/image_transform_gateway"
	"github.com/WhoamiI00/neo-pins-sub000/gateway/probe_gateway"
	"github.com/WhoamiI00/neo-pins-sub000/port/image_fetch_port"
	"github.com/WhoamiI00/neo-pins-sub000/usecase/network_state_usecase"
	"github.com/WhoamiI00/neo-pins-sub000/usecase/preload_usecase"
	"github.com/WhoamiI00/neo-pins-sub000/utils/imagesign"
	"github.com/WhoamiI00/neo-pins-sub000/utils/metrics"
	"github.com/WhoamiI00/neo-pins-sub000/utils/rate_limiter"
)

type ApplicationComponents struct {
	NetworkStateManager *network_state_usecase.NetworkStateManager
	ImagePreloader      *preload_usecase.ImagePreloader
	PreloadCache        *preload_cache.PreloadCache
	ImageFetcher        image_fetch_port.ImageFetchPort
	ImageTransformer    *image_transform_gateway.ImageTransformGateway
	ImageSigner         *imagesign.Signer
	MetricsCollector    *metrics.DeliveryMetricsCollector
}

func NewApplicationComponents(cfg *config.Config) (*ApplicationComponents, error) {
	collector := metrics.NewDeliveryMetricsCollector()

	httpClient := &http.Client{Timeout: cfg.HTTP.ClientTimeout}
	hostLimiter := rate_limiter.NewHostRateLimiterWithBurst(cfg.RateLimit.HostInterval, cfg.RateLimit.HostBurst)

	fetchGatewayImpl := image_fetch_gateway.NewImageFetchGateway(httpClient, hostLimiter)
	probeGatewayImpl := probe_gateway.NewNetworkProbeGateway(httpClient, cfg.Probe.BandwidthURL, cfg.Probe.LatencyURL, nil)

	stateManager := network_state_usecase.NewNetworkStateManager(probeGatewayImpl, collector, cfg.Network.ReassessInterval)

	cache, err := preload_cache.NewPreloadCache(cfg.Cache.Capacity, collector)
	if err != nil {
		return nil, err
	}

	preloader := preload_usecase.NewImagePreloader(fetchGatewayImpl, stateManager, cache, collector, cfg.Preload.BaseWidth)

	return &ApplicationComponents{
		NetworkStateManager: stateManager,
		ImagePreloader:      preloader,
		PreloadCache:        cache,
		ImageFetcher:        fetchGatewayImpl,
		ImageTransformer:    image_transform_gateway.NewImageTransformGateway(),
		ImageSigner:         imagesign.NewSigner(cfg.Proxy.SigningSecret),
		MetricsCollector:    collector,
	}, nil
}

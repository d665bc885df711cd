package progressive_image_usecase

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
	"github.com/WhoamiI00/neo-pins-sub000/mocks"
)

const storeURL = "https://storage.neopins.app/v1/buckets/pins/files/abc/view"
const foreignURL = "https://pbs.example-cdn.com/media/abc.jpg"

type fakeNetworkReader struct {
	mu    sync.Mutex
	state domain.NetworkState
}

func newFakeNetworkReader(speed domain.SpeedTier, quality domain.QualityTier, bandwidth float64) *fakeNetworkReader {
	m := domain.DefaultNetworkMetrics()
	m.BandwidthMbps = bandwidth
	return &fakeNetworkReader{state: domain.NetworkState{
		Speed:   speed,
		Quality: quality,
		Metrics: m,
	}}
}

func (f *fakeNetworkReader) Snapshot() domain.NetworkState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeNetworkReader) OptimalImageParams(baseWidth int) domain.ImageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.OptimalImageParams(f.state.Quality, f.state.Metrics.SaveDataRequested, baseWidth)
}

func (f *fakeNetworkReader) set(state domain.NetworkState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
}

func fastConfig() LoaderConfig {
	return LoaderConfig{
		BaseWidth:       400,
		Priority:        true,
		EnhanceDebounce: time.Millisecond,
		PremiumDebounce: time.Millisecond,
	}
}

func urlMatching(t *testing.T, check func(u *url.URL) bool) gomock.Matcher {
	t.Helper()
	return gomock.Cond(func(x any) bool {
		u, ok := x.(*url.URL)
		return ok && check(u)
	})
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 2*time.Millisecond, msg)
}

func TestLoader_UpgradesBaseThenEnhancementThenPremium(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockImageFetchPort(ctrl)
	network := newFakeNetworkReader(domain.SpeedFast, domain.QualityPremium, 12.0)

	var mu sync.Mutex
	var displayed []domain.LayerName
	cfg := fastConfig()
	cfg.OnDisplay = func(layer domain.LayerName, _ string) {
		mu.Lock()
		displayed = append(displayed, layer)
		mu.Unlock()
	}

	fetcher.EXPECT().
		FetchImage(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.ImageFetchResult{}, nil).
		Times(3)

	loader := NewProgressiveLoader(fetcher, network, storeURL, cfg)
	loader.Start(context.Background())

	eventually(t, func() bool {
		return loader.LayerStatus(domain.LayerPremium) == domain.LayerLoaded
	}, "premium layer should load on a fast premium link")

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []domain.LayerName{domain.LayerBase, domain.LayerEnhancement, domain.LayerPremium}, displayed)

	params, ok := domain.ParseTransformURL(loader.DisplayedURL())
	require.True(t, ok)
	assert.Equal(t, 800, params.Width)
	assert.Equal(t, 90, params.Quality)
	assert.Equal(t, "webp", params.Format)
}

func TestLoader_BaseLayerParamsAreCheap(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockImageFetchPort(ctrl)
	network := newFakeNetworkReader(domain.SpeedSlow, domain.QualityBasic, 0.8)

	fetcher.EXPECT().
		FetchImage(gomock.Any(), urlMatching(t, func(u *url.URL) bool {
			return u.Query().Get("width") == "400" &&
				u.Query().Get("quality") == "40" &&
				u.Query().Get("format") == "jpeg"
		}), gomock.Any()).
		Return(&domain.ImageFetchResult{}, nil)
	// Slow basic link still gets the enhancement layer.
	fetcher.EXPECT().
		FetchImage(gomock.Any(), urlMatching(t, func(u *url.URL) bool {
			return u.Query().Get("quality") == "60"
		}), gomock.Any()).
		Return(&domain.ImageFetchResult{}, nil)

	loader := NewProgressiveLoader(fetcher, network, storeURL, fastConfig())
	loader.Start(context.Background())

	eventually(t, func() bool {
		return loader.LayerStatus(domain.LayerEnhancement) == domain.LayerLoaded
	}, "enhancement should load")

	// Premium gate is closed on a slow basic link.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, domain.LayerPending, loader.LayerStatus(domain.LayerPremium))
}

func TestLoader_LazyWaitsForViewport(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockImageFetchPort(ctrl)
	network := newFakeNetworkReader(domain.SpeedMedium, domain.QualityStandard, 3.0)

	cfg := fastConfig()
	cfg.Priority = false

	loader := NewProgressiveLoader(fetcher, network, storeURL, cfg)
	loader.Start(context.Background())

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, domain.LayerPending, loader.LayerStatus(domain.LayerBase))

	fetcher.EXPECT().
		FetchImage(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.ImageFetchResult{}, nil).
		Times(2)

	loader.EnterViewport(context.Background())
	loader.EnterViewport(context.Background())

	eventually(t, func() bool {
		return loader.LayerStatus(domain.LayerEnhancement) == domain.LayerLoaded
	}, "layers should load after viewport entry")
}

func TestLoader_MinimalQualitySkipsUpgrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockImageFetchPort(ctrl)
	network := newFakeNetworkReader(domain.SpeedSlow, domain.QualityMinimal, 0.2)

	fetcher.EXPECT().
		FetchImage(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.ImageFetchResult{}, nil).
		Times(1)

	loader := NewProgressiveLoader(fetcher, network, storeURL, fastConfig())
	loader.Start(context.Background())

	eventually(t, func() bool {
		return loader.LayerStatus(domain.LayerBase) == domain.LayerLoaded
	}, "base should load")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, domain.LayerPending, loader.LayerStatus(domain.LayerEnhancement))
	assert.Equal(t, domain.LayerPending, loader.LayerStatus(domain.LayerPremium))
}

func TestLoader_BaseFailureFallsBackToOriginalURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockImageFetchPort(ctrl)
	network := newFakeNetworkReader(domain.SpeedFast, domain.QualityPremium, 12.0)

	fetcher.EXPECT().
		FetchImage(gomock.Any(), urlMatching(t, func(u *url.URL) bool {
			return u.Query().Get("width") != ""
		}), gomock.Any()).
		Return(nil, errors.New("transform endpoint down"))
	fetcher.EXPECT().
		FetchImage(gomock.Any(), urlMatching(t, func(u *url.URL) bool {
			return u.Query().Get("width") == ""
		}), gomock.Any()).
		Return(&domain.ImageFetchResult{}, nil)

	loader := NewProgressiveLoader(fetcher, network, storeURL, fastConfig())
	loader.Start(context.Background())

	eventually(t, func() bool {
		return loader.DisplayedURL() == storeURL
	}, "original URL should be displayed after base failure")

	// Base failure stops the upgrade ladder entirely.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, domain.LayerPending, loader.LayerStatus(domain.LayerEnhancement))
	assert.Equal(t, domain.LayerPending, loader.LayerStatus(domain.LayerPremium))
	assert.False(t, loader.Exhausted())
}

func TestLoader_AllFailedSurfacesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockImageFetchPort(ctrl)
	network := newFakeNetworkReader(domain.SpeedFast, domain.QualityPremium, 12.0)

	failures := make(chan error, 1)
	cfg := fastConfig()
	cfg.Placeholder = "placeholder://blur"
	cfg.OnFailure = func(err error) { failures <- err }

	fetcher.EXPECT().
		FetchImage(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("unreachable")).
		Times(2)

	loader := NewProgressiveLoader(fetcher, network, storeURL, cfg)
	loader.Start(context.Background())

	select {
	case err := <-failures:
		require.ErrorContains(t, err, "all layers failed")
	case <-time.After(2 * time.Second):
		t.Fatal("expected a failure callback")
	}

	assert.True(t, loader.Exhausted())
	assert.Equal(t, "placeholder://blur", loader.DisplayedURL())
}

func TestLoader_EnhancementFailureStillAttemptsPremium(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockImageFetchPort(ctrl)
	network := newFakeNetworkReader(domain.SpeedFast, domain.QualityPremium, 12.0)

	gomock.InOrder(
		fetcher.EXPECT().
			FetchImage(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&domain.ImageFetchResult{}, nil),
		fetcher.EXPECT().
			FetchImage(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("timeout")),
		fetcher.EXPECT().
			FetchImage(gomock.Any(), urlMatching(t, func(u *url.URL) bool {
				return u.Query().Get("format") == "webp"
			}), gomock.Any()).
			Return(&domain.ImageFetchResult{}, nil),
	)

	loader := NewProgressiveLoader(fetcher, network, storeURL, fastConfig())
	loader.Start(context.Background())

	eventually(t, func() bool {
		return loader.LayerStatus(domain.LayerPremium) == domain.LayerLoaded
	}, "premium should load even after an enhancement failure")

	// Displayed source stays on the best loaded layer at all times.
	params, ok := domain.ParseTransformURL(loader.DisplayedURL())
	require.True(t, ok)
	assert.Equal(t, "webp", params.Format)
}

func TestLoader_PremiumGateRequiresBandwidthHeadroom(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockImageFetchPort(ctrl)
	// Premium quality and fast speed, but only 4 Mbps measured.
	network := newFakeNetworkReader(domain.SpeedFast, domain.QualityPremium, 4.0)

	fetcher.EXPECT().
		FetchImage(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.ImageFetchResult{}, nil).
		Times(2)

	loader := NewProgressiveLoader(fetcher, network, storeURL, fastConfig())
	loader.Start(context.Background())

	eventually(t, func() bool {
		return loader.LayerStatus(domain.LayerEnhancement) == domain.LayerLoaded
	}, "enhancement should load")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, domain.LayerPending, loader.LayerStatus(domain.LayerPremium))
}

func TestLoader_ForeignHostIsSingleLayer(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockImageFetchPort(ctrl)
	network := newFakeNetworkReader(domain.SpeedFast, domain.QualityPremium, 12.0)

	fetcher.EXPECT().
		FetchImage(gomock.Any(), urlMatching(t, func(u *url.URL) bool {
			return u.String() == foreignURL
		}), gomock.Any()).
		Return(&domain.ImageFetchResult{}, nil).
		Times(1)

	loader := NewProgressiveLoader(fetcher, network, foreignURL, fastConfig())
	loader.Start(context.Background())

	eventually(t, func() bool {
		return loader.DisplayedURL() == foreignURL
	}, "foreign URL should be displayed as-is")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, domain.LayerPending, loader.LayerStatus(domain.LayerEnhancement))
	assert.Equal(t, domain.LayerPending, loader.LayerStatus(domain.LayerPremium))
}

func TestLoader_EnhancementParamsFollowNetworkAtFetchTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockImageFetchPort(ctrl)
	network := newFakeNetworkReader(domain.SpeedFast, domain.QualityPremium, 12.0)

	baseDone := make(chan struct{})
	fetcher.EXPECT().
		FetchImage(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *url.URL, *domain.ImageFetchOptions) (*domain.ImageFetchResult, error) {
			close(baseDone)
			return &domain.ImageFetchResult{}, nil
		})
	fetcher.EXPECT().
		FetchImage(gomock.Any(), urlMatching(t, func(u *url.URL) bool {
			// Basic profile: quality 60 jpeg at 1.0x width.
			return u.Query().Get("quality") == "60" &&
				u.Query().Get("format") == "jpeg" &&
				u.Query().Get("width") == "400"
		}), gomock.Any()).
		Return(&domain.ImageFetchResult{}, nil)

	cfg := fastConfig()
	cfg.EnhanceDebounce = 30 * time.Millisecond

	loader := NewProgressiveLoader(fetcher, network, storeURL, cfg)
	loader.Start(context.Background())

	<-baseDone
	// Network degrades during the debounce window.
	network.set(domain.NetworkState{
		Speed:   domain.SpeedMedium,
		Quality: domain.QualityBasic,
		Metrics: domain.DefaultNetworkMetrics(),
	})

	eventually(t, func() bool {
		return loader.LayerStatus(domain.LayerEnhancement) == domain.LayerLoaded
	}, "enhancement should load with degraded parameters")
}

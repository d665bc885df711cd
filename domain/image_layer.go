package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// LayerName identifies one encoding of a logical image. Layers are strictly
// ordered base < enhancement < premium.
type LayerName string

const (
	LayerBase        LayerName = "base"
	LayerEnhancement LayerName = "enhancement"
	LayerPremium     LayerName = "premium"
)

// LayerRank returns the precedence of a layer; higher is richer.
func LayerRank(l LayerName) int {
	switch l {
	case LayerBase:
		return 1
	case LayerEnhancement:
		return 2
	case LayerPremium:
		return 3
	}
	return 0
}

// LayerStatus is the load state of one {image, layer} pair.
type LayerStatus string

const (
	LayerPending LayerStatus = "pending"
	LayerLoading LayerStatus = "loading"
	LayerLoaded  LayerStatus = "loaded"
	LayerFailed  LayerStatus = "failed"
)

// ImageLayerState tracks one layer of one progressive loader instance.
// Status only moves pending→loading→{loaded|failed} and never re-enters
// pending. A failed layer is never retried within the same instance.
type ImageLayerState struct {
	Name      LayerName
	TargetURL string
	Status    LayerStatus
}

// LayerParams derives the request parameters for one layer from the display
// width and the current network-optimal parameters. The base layer is a
// cheap first paint, the enhancement layer follows whatever the network
// currently supports, and the premium layer is the full-fidelity encoding.
func LayerParams(layer LayerName, baseWidth int, network ImageParams) ImageParams {
	switch layer {
	case LayerEnhancement:
		return network
	case LayerPremium:
		return ImageParams{Width: baseWidth * 2, Quality: 90, Format: "webp"}
	default:
		return ImageParams{Width: baseWidth, Quality: 40, Format: "jpeg"}
	}
}

// transformableHosts are object-store hosts known to honor width/quality/
// format query transforms. URLs on any other host are served as-is in a
// single-layer best-effort mode.
var transformableHosts = []string{
	"cloud.appwrite.io",
	"storage.neopins.app",
}

var transformableHostSuffixes = []string{
	"appwrite.io",
	"imgix.net",
	"cloudinary.com",
}

// IsTransformableURL reports whether the URL points at an object store that
// honors resize/quality/format query parameters.
func IsTransformableURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range transformableHosts {
		if host == h {
			return true
		}
	}
	for _, suffix := range transformableHostSuffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

// Transform query parameter names understood by the object store.
const (
	transformWidthParam   = "width"
	transformQualityParam = "quality"
	transformFormatParam  = "format"
)

// TransformURL augments an object-store URL with resize/quality/format
// query parameters. URLs on unrecognized hosts are returned unchanged.
// Construction is idempotent: re-applying replaces rather than appends.
func TransformURL(rawURL string, p ImageParams) string {
	if !IsTransformableURL(rawURL) {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := u.Query()
	q.Set(transformWidthParam, strconv.Itoa(p.Width))
	q.Set(transformQualityParam, strconv.Itoa(p.Quality))
	q.Set(transformFormatParam, p.Format)
	u.RawQuery = q.Encode()

	return u.String()
}

// ParseTransformURL extracts the transform parameters previously applied by
// TransformURL. The second return is false when the URL carries no complete
// transform parameter set.
func ParseTransformURL(rawURL string) (ImageParams, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ImageParams{}, false
	}

	q := u.Query()
	widthStr := q.Get(transformWidthParam)
	qualityStr := q.Get(transformQualityParam)
	format := q.Get(transformFormatParam)
	if widthStr == "" || qualityStr == "" || format == "" {
		return ImageParams{}, false
	}

	width, err := strconv.Atoi(widthStr)
	if err != nil {
		return ImageParams{}, false
	}
	quality, err := strconv.Atoi(qualityStr)
	if err != nil {
		return ImageParams{}, false
	}

	return ImageParams{Width: width, Quality: quality, Format: format}, true
}

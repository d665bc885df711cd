package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerRank_Ordering(t *testing.T) {
	assert.Less(t, LayerRank(LayerBase), LayerRank(LayerEnhancement))
	assert.Less(t, LayerRank(LayerEnhancement), LayerRank(LayerPremium))
	assert.Equal(t, 0, LayerRank(LayerName("unknown")))
}

func TestIsTransformableURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://storage.neopins.app/v1/files/a/view", true},
		{"https://cloud.appwrite.io/v1/storage/buckets/b/files/f/view", true},
		{"https://fra.cloud.appwrite.io/v1/storage/buckets/b/files/f/view", true},
		{"https://img.imgix.net/photo.jpg", true},
		{"https://res.cloudinary.com/demo/image/upload/sample.jpg", true},
		{"https://pbs.example-cdn.com/media/abc.jpg", false},
		{"https://notappwrite.io.evil.com/x", false},
		{"not a url at all ://", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTransformableURL(tt.url), tt.url)
	}
}

func TestTransformURL_RoundTrip(t *testing.T) {
	raw := "https://storage.neopins.app/v1/files/a/view"
	params := ImageParams{Width: 600, Quality: 75, Format: "webp"}

	transformed := TransformURL(raw, params)
	got, ok := ParseTransformURL(transformed)
	require.True(t, ok)
	assert.Equal(t, params, got)
}

func TestTransformURL_IsIdempotent(t *testing.T) {
	raw := "https://storage.neopins.app/v1/files/a/view"

	first := TransformURL(raw, ImageParams{Width: 400, Quality: 40, Format: "jpeg"})
	second := TransformURL(first, ImageParams{Width: 800, Quality: 90, Format: "webp"})

	got, ok := ParseTransformURL(second)
	require.True(t, ok)
	assert.Equal(t, ImageParams{Width: 800, Quality: 90, Format: "webp"}, got)
}

func TestTransformURL_PreservesExistingQuery(t *testing.T) {
	raw := "https://storage.neopins.app/v1/files/a/view?project=neopins"

	transformed := TransformURL(raw, ImageParams{Width: 400, Quality: 60, Format: "jpeg"})
	assert.Contains(t, transformed, "project=neopins")
}

func TestTransformURL_ForeignHostUnchanged(t *testing.T) {
	raw := "https://pbs.example-cdn.com/media/abc.jpg"
	assert.Equal(t, raw, TransformURL(raw, ImageParams{Width: 400, Quality: 60, Format: "jpeg"}))
}

func TestParseTransformURL_IncompleteParams(t *testing.T) {
	_, ok := ParseTransformURL("https://storage.neopins.app/v1/files/a/view?width=400")
	assert.False(t, ok)
}

func TestLayerParams(t *testing.T) {
	network := ImageParams{Width: 600, Quality: 75, Format: "webp"}

	assert.Equal(t, ImageParams{Width: 400, Quality: 40, Format: "jpeg"}, LayerParams(LayerBase, 400, network))
	assert.Equal(t, network, LayerParams(LayerEnhancement, 400, network))
	assert.Equal(t, ImageParams{Width: 800, Quality: 90, Format: "webp"}, LayerParams(LayerPremium, 400, network))
}

package image_transform_gateway

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
)

// ImageTransformGateway resizes and re-encodes fetched images to the
// width/quality a client requested. Pure Go (no CGo) so it works with
// CGO_ENABLED=0 builds.
type ImageTransformGateway struct{}

// NewImageTransformGateway creates a new ImageTransformGateway.
func NewImageTransformGateway() *ImageTransformGateway {
	return &ImageTransformGateway{}
}

// Transform decodes, resizes (maintaining aspect ratio, never upscaling),
// and re-encodes as JPEG at the requested quality.
func (g *ImageTransformGateway) Transform(ctx context.Context, data []byte, width, quality int) (*domain.TransformedImage, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	if width <= 0 || width > domain.TransformMaxWidth {
		width = domain.TransformMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = 75
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()

	resized := img
	newWidth := origWidth
	newHeight := origHeight
	if origWidth > width {
		newWidth = width
		newHeight = origHeight * width / origWidth
		dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		resized = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode JPEG: %w", err)
	}

	encoded := buf.Bytes()
	if len(encoded) > domain.TransformMaxSize {
		return nil, fmt.Errorf("transformed image exceeds size limit: %d > %d", len(encoded), domain.TransformMaxSize)
	}

	hash := sha256.Sum256(encoded)
	etag := hex.EncodeToString(hash[:16])

	return &domain.TransformedImage{
		Data:        encoded,
		ContentType: "image/jpeg",
		Width:       newWidth,
		Height:      newHeight,
		SizeBytes:   len(encoded),
		ETag:        etag,
	}, nil
}

package image_fetch_gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
	"github.com/WhoamiI00/neo-pins-sub000/utils/errors"
	"github.com/WhoamiI00/neo-pins-sub000/utils/rate_limiter"
)

const userAgent = "NeoPins-ImageDelivery/1.0 (+https://neopins.app)"

// ImageFetchGateway implements the ImageFetchPort interface. It acts as an
// Anti-Corruption Layer between the domain and the object store's HTTP
// surface.
type ImageFetchGateway struct {
	httpClient  *http.Client
	rateLimiter *rate_limiter.HostRateLimiter
}

// NewImageFetchGateway creates a new ImageFetchGateway. rateLimiter may be
// nil to disable per-host pacing (used by tests and the probe path).
func NewImageFetchGateway(httpClient *http.Client, rateLimiter *rate_limiter.HostRateLimiter) *ImageFetchGateway {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > 3 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	return &ImageFetchGateway{httpClient: httpClient, rateLimiter: rateLimiter}
}

// FetchImage fetches an image from an external URL through the HTTP client.
func (g *ImageFetchGateway) FetchImage(ctx context.Context, imageURL *url.URL, options *domain.ImageFetchOptions) (*domain.ImageFetchResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if options == nil {
		options = domain.NewImageFetchOptions()
	}

	if imageURL == nil || imageURL.Host == "" {
		return nil, errors.NewValidationContextError(
			"image URL has no host",
			"gateway",
			"ImageFetchGateway",
			"validate_url",
			nil,
		)
	}

	if g.rateLimiter != nil {
		if err := g.rateLimiter.WaitForHost(ctx, imageURL.String()); err != nil {
			return nil, errors.NewAppContextError(
				"RATE_LIMIT_ERROR",
				"rate limit wait interrupted",
				"gateway",
				"ImageFetchGateway",
				"rate_limit",
				err,
				map[string]interface{}{"host": imageURL.Host},
			)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL.String(), nil)
	if err != nil {
		return nil, errors.NewExternalAPIContextError(
			"failed to create HTTP request",
			"gateway",
			"ImageFetchGateway",
			"create_request",
			err,
			map[string]interface{}{"url": imageURL.String()},
		)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/webp, image/jpeg, image/png, image/gif")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "context deadline exceeded") {
			return nil, errors.NewTimeoutContextError(
				"request timeout",
				"gateway",
				"ImageFetchGateway",
				"http_request",
				err,
				map[string]interface{}{
					"url":     imageURL.String(),
					"timeout": options.Timeout.String(),
				},
			)
		}
		return nil, errors.NewExternalAPIContextError(
			"HTTP request failed",
			"gateway",
			"ImageFetchGateway",
			"http_request",
			err,
			map[string]interface{}{"url": imageURL.String()},
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewExternalAPIContextError(
			fmt.Sprintf("HTTP request failed with status %d", resp.StatusCode),
			"gateway",
			"ImageFetchGateway",
			"http_response",
			fmt.Errorf("status code: %d", resp.StatusCode),
			map[string]interface{}{
				"url":         imageURL.String(),
				"status_code": resp.StatusCode,
			},
		)
	}

	contentType := resp.Header.Get("Content-Type")
	if !domain.IsValidImageContentType(contentType) {
		return nil, errors.NewValidationContextError(
			"response is not an image",
			"gateway",
			"ImageFetchGateway",
			"validate_content_type",
			map[string]interface{}{
				"url":          imageURL.String(),
				"content_type": contentType,
			},
		)
	}

	if header := resp.Header.Get("Content-Length"); header != "" {
		if contentLength, err := strconv.ParseInt(header, 10, 64); err == nil && contentLength > int64(options.MaxSize) {
			return nil, errors.NewValidationContextError(
				"image too large",
				"gateway",
				"ImageFetchGateway",
				"validate_size",
				map[string]interface{}{
					"url":            imageURL.String(),
					"content_length": contentLength,
					"max_size":       options.MaxSize,
				},
			)
		}
	}

	// +1 so an over-limit body is detectable after the read.
	limitedReader := io.LimitReader(resp.Body, int64(options.MaxSize)+1)
	imageData, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, errors.NewExternalAPIContextError(
			"failed to read response body",
			"gateway",
			"ImageFetchGateway",
			"read_response",
			err,
			map[string]interface{}{"url": imageURL.String()},
		)
	}

	if len(imageData) > options.MaxSize {
		return nil, errors.NewValidationContextError(
			"image too large",
			"gateway",
			"ImageFetchGateway",
			"validate_actual_size",
			map[string]interface{}{
				"url":         imageURL.String(),
				"actual_size": len(imageData),
				"max_size":    options.MaxSize,
			},
		)
	}

	return &domain.ImageFetchResult{
		URL:         imageURL.String(),
		ContentType: contentType,
		Data:        imageData,
		Size:        len(imageData),
		FetchedAt:   time.Now(),
	}, nil
}

package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ImageFetchResult is the opaque loaded-image handle produced by a fetch.
type ImageFetchResult struct {
	URL         string
	ContentType string
	Data        []byte
	Size        int
	FetchedAt   time.Time
}

// ImageFetchOptions represents options for fetching an image.
type ImageFetchOptions struct {
	MaxSize int           // maximum body size in bytes (default: 5MB)
	Timeout time.Duration // request timeout (default: 30s)
}

// NewImageFetchOptions creates default ImageFetchOptions.
func NewImageFetchOptions() *ImageFetchOptions {
	return &ImageFetchOptions{
		MaxSize: 5 * 1024 * 1024,
		Timeout: 30 * time.Second,
	}
}

// ValidateImageURL validates if the URL is suitable for image fetching.
func ValidateImageURL(rawURL string) (*url.URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL format: %w", err)
	}

	// Only allow HTTPS
	if parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("only HTTPS URLs are allowed")
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("URL has no host")
	}

	return parsedURL, nil
}

// IsValidImageContentType validates if the content type is an allowed image type.
func IsValidImageContentType(contentType string) bool {
	if contentType == "" {
		return false
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(contentType, "image/")
}

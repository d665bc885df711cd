package image_fetch_gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhoamiI00/neo-pins-sub000/domain"
	"github.com/WhoamiI00/neo-pins-sub000/utils/errors"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestFetchImage_Success(t *testing.T) {
	payload := []byte("fake-jpeg-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	}))
	defer server.Close()

	gw := NewImageFetchGateway(server.Client(), nil)

	result, err := gw.FetchImage(context.Background(), mustParse(t, server.URL+"/pin.jpg"), nil)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", result.ContentType)
	assert.Equal(t, payload, result.Data)
	assert.Equal(t, len(payload), result.Size)
	assert.NotZero(t, result.FetchedAt)
}

func TestFetchImage_NonImageContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	gw := NewImageFetchGateway(server.Client(), nil)

	_, err := gw.FetchImage(context.Background(), mustParse(t, server.URL), nil)
	require.Error(t, err)

	appErr, ok := err.(*errors.AppContextError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestFetchImage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gw := NewImageFetchGateway(server.Client(), nil)

	_, err := gw.FetchImage(context.Background(), mustParse(t, server.URL), nil)
	require.Error(t, err)

	appErr, ok := err.(*errors.AppContextError)
	require.True(t, ok)
	assert.Equal(t, "EXTERNAL_API_ERROR", appErr.Code)
	assert.True(t, appErr.IsRetryable())
}

func TestFetchImage_BodyOverLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	gw := NewImageFetchGateway(server.Client(), nil)
	options := &domain.ImageFetchOptions{MaxSize: 1024, Timeout: 5 * time.Second}

	_, err := gw.FetchImage(context.Background(), mustParse(t, server.URL), options)
	require.Error(t, err)

	appErr, ok := err.(*errors.AppContextError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestFetchImage_ContentLengthHeaderOverLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", "4096")
		w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	gw := NewImageFetchGateway(server.Client(), nil)
	options := &domain.ImageFetchOptions{MaxSize: 1024, Timeout: 5 * time.Second}

	_, err := gw.FetchImage(context.Background(), mustParse(t, server.URL), options)
	require.Error(t, err)
}

func TestFetchImage_CancelledContext(t *testing.T) {
	gw := NewImageFetchGateway(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.FetchImage(ctx, mustParse(t, "https://images.example/pin.jpg"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchImage_NilURL(t *testing.T) {
	gw := NewImageFetchGateway(nil, nil)

	_, err := gw.FetchImage(context.Background(), nil, nil)
	require.Error(t, err)

	appErr, ok := err.(*errors.AppContextError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

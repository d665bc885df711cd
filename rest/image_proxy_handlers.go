package rest

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/WhoamiI00/neo-pins-sub000/config"
	"github.com/WhoamiI00/neo-pins-sub000/di"
	"github.com/WhoamiI00/neo-pins-sub000/domain"
	"github.com/WhoamiI00/neo-pins-sub000/utils/errors"
)

// registerImageProxyRoutes registers the signed image proxy. The endpoint
// is unauthenticated; the HMAC signature in the path is the authorization
// token, so only URLs minted by this service can be served.
func registerImageProxyRoutes(v1 *echo.Group, container *di.ApplicationComponents, cfg *config.Config) {
	images := v1.Group("/images")
	images.POST("/sign", handleSignImageURL(container))
	images.GET("/proxy/:sig/:url", handleImageProxy(container, cfg))
}

type signRequest struct {
	URL string `json:"url"`
}

type signResponse struct {
	ProxyURL string `json:"proxy_url"`
}

func handleSignImageURL(container *di.ApplicationComponents) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req signRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
		if _, err := domain.ValidateImageURL(req.URL); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, signResponse{
			ProxyURL: container.ImageSigner.GenerateProxyURL(req.URL),
		})
	}
}

// proxyParams resolves the requested transform, falling back to the
// network-optimal parameters when the client does not specify them.
func proxyParams(c echo.Context, container *di.ApplicationComponents, cfg *config.Config) (int, int) {
	optimal := container.NetworkStateManager.OptimalImageParams(cfg.Preload.BaseWidth)

	width := optimal.Width
	if raw := c.QueryParam("width"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			width = v
		}
	}
	quality := optimal.Quality
	if raw := c.QueryParam("quality"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			quality = v
		}
	}

	if width > cfg.Proxy.MaxWidth {
		width = cfg.Proxy.MaxWidth
	}
	if quality > cfg.Proxy.MaxQuality {
		quality = cfg.Proxy.MaxQuality
	}
	return width, quality
}

func handleImageProxy(container *di.ApplicationComponents, cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		sig := c.Param("sig")
		encodedURL := c.Param("url")
		if sig == "" || encodedURL == "" {
			return c.String(http.StatusBadRequest, "missing parameters")
		}

		imageURL, err := container.ImageSigner.VerifyAndDecode(sig, encodedURL)
		if err != nil {
			return c.String(http.StatusForbidden, "invalid signature")
		}

		parsed, err := domain.ValidateImageURL(imageURL)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid image url")
		}

		result, err := container.ImageFetcher.FetchImage(c.Request().Context(), parsed, domain.NewImageFetchOptions())
		if err != nil {
			return proxyError(c, err)
		}

		width, quality := proxyParams(c, container, cfg)
		transformed, err := container.ImageTransformer.Transform(c.Request().Context(), result.Data, width, quality)
		if err != nil {
			return proxyError(c, err)
		}

		if match := c.Request().Header.Get("If-None-Match"); match != "" && match == `"`+transformed.ETag+`"` {
			return c.NoContent(http.StatusNotModified)
		}

		c.Response().Header().Set("Cache-Control", "public, max-age=43200, immutable")
		c.Response().Header().Set("ETag", `"`+transformed.ETag+`"`)
		c.Response().Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
		c.Response().Header().Set("Vary", "Accept-Encoding")

		return c.Blob(http.StatusOK, transformed.ContentType, transformed.Data)
	}
}

func proxyError(c echo.Context, err error) error {
	if appErr, ok := err.(*errors.AppContextError); ok {
		return c.String(appErr.HTTPStatusCode(), appErr.Code)
	}
	return c.String(http.StatusBadGateway, "image proxy error")
}

// Package rest exposes the image delivery pipeline over HTTP: network
// state, batch preloading, and the signed image proxy.
package rest

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/WhoamiI00/neo-pins-sub000/config"
	"github.com/WhoamiI00/neo-pins-sub000/di"
)

func RegisterRoutes(e *echo.Echo, container *di.ApplicationComponents, cfg *config.Config) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "https://neopins.app"},
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "Cache-Control"},
		MaxAge:       86400,
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Image bytes are already compressed; websocket upgrades must
			// not pass through the gzip writer.
			return strings.Contains(c.Path(), "/images/proxy/") ||
				strings.Contains(c.Path(), "/ws")
		},
	}))

	e.GET("/v1/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/v1")

	registerNetworkRoutes(v1, container)
	registerPreloadRoutes(v1, container, cfg)
	registerImageProxyRoutes(v1, container, cfg)
	registerMetricsRoutes(v1, container)
}

package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/WhoamiI00/neo-pins-sub000/di"
)

func registerMetricsRoutes(v1 *echo.Group, container *di.ApplicationComponents) {
	v1.GET("/metrics/delivery", func(c echo.Context) error {
		return c.JSON(http.StatusOK, container.MetricsCollector.GetSnapshot())
	})
}

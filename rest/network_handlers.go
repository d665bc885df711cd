package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/WhoamiI00/neo-pins-sub000/di"
	"github.com/WhoamiI00/neo-pins-sub000/domain"
)

// networkStateResponse is the wire shape of the current network assessment.
type networkStateResponse struct {
	Speed                 domain.SpeedTier      `json:"speed"`
	Quality               domain.QualityTier    `json:"quality"`
	Online                bool                  `json:"online"`
	QualityForced         bool                  `json:"quality_forced"`
	SmoothedBandwidthMbps float64               `json:"smoothed_bandwidth_mbps"`
	Metrics               domain.NetworkMetrics `json:"metrics"`
	AssessedAt            string                `json:"assessed_at"`
}

func registerNetworkRoutes(v1 *echo.Group, container *di.ApplicationComponents) {
	network := v1.Group("/network")
	network.GET("/state", handleNetworkState(container))
	network.POST("/reassess", handleNetworkReassess(container))
	network.POST("/quality", handleForceQuality(container))
	network.POST("/online", handleSetOnline(container))
}

func stateResponse(container *di.ApplicationComponents) networkStateResponse {
	state := container.NetworkStateManager.Snapshot()
	return networkStateResponse{
		Speed:                 state.Speed,
		Quality:               state.Quality,
		Online:                container.NetworkStateManager.Online(),
		QualityForced:         container.NetworkStateManager.QualityForced(),
		SmoothedBandwidthMbps: container.NetworkStateManager.SmoothedBandwidthMbps(),
		Metrics:               state.Metrics,
		AssessedAt:            state.LastAssessment.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func handleNetworkState(container *di.ApplicationComponents) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, stateResponse(container))
	}
}

func handleNetworkReassess(container *di.ApplicationComponents) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := container.NetworkStateManager.Reassess(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, stateResponse(container))
	}
}

type forceQualityRequest struct {
	Quality string `json:"quality"`
}

func handleForceQuality(container *di.ApplicationComponents) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req forceQualityRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
		if !domain.IsValidQualityTier(req.Quality) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown quality tier: " + req.Quality})
		}

		container.NetworkStateManager.ForceQuality(domain.QualityTier(req.Quality))
		return c.JSON(http.StatusOK, stateResponse(container))
	}
}

type setOnlineRequest struct {
	Online bool `json:"online"`
}

func handleSetOnline(container *di.ApplicationComponents) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req setOnlineRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}

		if err := container.NetworkStateManager.SetOnline(c.Request().Context(), req.Online); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, stateResponse(container))
	}
}

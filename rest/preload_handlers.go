package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/WhoamiI00/neo-pins-sub000/config"
	"github.com/WhoamiI00/neo-pins-sub000/di"
	"github.com/WhoamiI00/neo-pins-sub000/domain"
	"github.com/WhoamiI00/neo-pins-sub000/utils/logger"
)

const maxPreloadBatch = 100

type preloadRequest struct {
	URLs          []string `json:"urls"`
	MaxConcurrent int      `json:"max_concurrent,omitempty"`
}

type preloadResponse struct {
	Requested int      `json:"requested"`
	Loaded    int      `json:"loaded"`
	Keys      []string `json:"keys"`
}

func registerPreloadRoutes(v1 *echo.Group, container *di.ApplicationComponents, cfg *config.Config) {
	preload := v1.Group("/images/preload")
	preload.POST("", handlePreloadBatch(container, cfg))
	preload.GET("/ws", handlePreloadWebSocket(container, cfg))
}

func (r *preloadRequest) validate(cfg *config.Config) (string, bool) {
	if len(r.URLs) == 0 {
		return "urls must not be empty", false
	}
	if len(r.URLs) > maxPreloadBatch {
		return "too many urls in one batch", false
	}
	if r.MaxConcurrent <= 0 {
		r.MaxConcurrent = cfg.Preload.MaxConcurrent
	}
	return "", true
}

func handlePreloadBatch(container *di.ApplicationComponents, cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req preloadRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
		if msg, ok := req.validate(cfg); !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
		}

		entries := container.ImagePreloader.PreloadMany(c.Request().Context(), req.URLs,
			&domain.BatchPreloadOptions{MaxConcurrent: req.MaxConcurrent})

		keys := make([]string, 0, len(entries))
		for _, entry := range entries {
			keys = append(keys, entry.Key)
		}

		return c.JSON(http.StatusOK, preloadResponse{
			Requested: len(req.URLs),
			Loaded:    len(entries),
			Keys:      keys,
		})
	}
}

var preloadUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// preloadSocketMessage is the frame format streamed to websocket clients:
// a progress frame after every settled URL, then one result frame. An
// invalid request produces a single error frame instead.
type preloadSocketMessage struct {
	Type    string `json:"type"` // "progress", "result", or "error"
	Payload any    `json:"payload"`
}

type preloadProgressPayload struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// handlePreloadWebSocket preloads a batch while streaming progress frames.
// The client sends one preloadRequest JSON message, then reads until the
// result frame arrives. Closing the socket cancels the batch.
func handlePreloadWebSocket(container *di.ApplicationComponents, cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := preloadUpgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		defer conn.Close()

		var req preloadRequest
		if err := conn.ReadJSON(&req); err != nil {
			return nil
		}
		if msg, ok := req.validate(cfg); !ok {
			_ = conn.WriteJSON(preloadSocketMessage{Type: "error", Payload: msg})
			return nil
		}

		ctx, cancel := context.WithCancel(c.Request().Context())
		defer cancel()

		// All writes go through one goroutine; gorilla connections do not
		// allow concurrent writers.
		frames := make(chan preloadSocketMessage, 64)
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for frame := range frames {
				if err := conn.WriteJSON(frame); err != nil {
					logger.SafeInfoContext(ctx, "preload socket write failed", "error", err)
					cancel()
					return
				}
			}
		}()

		// The client going away cancels the batch.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		opts := &domain.BatchPreloadOptions{
			MaxConcurrent: req.MaxConcurrent,
			OnProgress: func(completed, total int) {
				select {
				case frames <- preloadSocketMessage{
					Type:    "progress",
					Payload: preloadProgressPayload{Completed: completed, Total: total},
				}:
				case <-ctx.Done():
				}
			},
		}

		entries := container.ImagePreloader.PreloadMany(ctx, req.URLs, opts)

		keys := make([]string, 0, len(entries))
		for _, entry := range entries {
			keys = append(keys, entry.Key)
		}
		select {
		case frames <- preloadSocketMessage{
			Type: "result",
			Payload: preloadResponse{
				Requested: len(req.URLs),
				Loaded:    len(entries),
				Keys:      keys,
			},
		}:
		case <-ctx.Done():
		}

		close(frames)
		<-writerDone
		return nil
	}
}

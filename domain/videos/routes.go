package videos

import (
	"log/slog"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the media routes
func RegisterRoutes(e *echo.Echo, h *Handler, log *slog.Logger) {
	e.GET("/videos/:filename", h.ServeVideo)
	e.Static("/images", h.imagesDir)

	log.Info("media routes registered",
		slog.String("videos", h.videosDir),
		slog.String("images", h.imagesDir),
	)
}

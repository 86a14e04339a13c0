package video

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the video routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/video")

	g.GET("", h.List)
	g.GET("/:identifier", h.Get)
}

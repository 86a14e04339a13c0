package display

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the display routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/ui")

	g.GET("/slide", h.CurrentSlide)
	g.POST("/slide/close", h.CloseSlide)
	g.GET("/video", h.CurrentVideo)
	g.POST("/video/close", h.CloseVideo)
}

package chatmessage

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the UI coordination routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/ui")

	g.POST("/next-slide", h.NextSlide)
	g.POST("/popup", h.SetPopup)
	g.GET("/state", h.State)
}

package chat

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the hub socket and the SSE chat stream
func RegisterRoutes(e *echo.Echo, hub *Hub, h *Handler) {
	e.GET("/chathub", hub.ServeWS)
	e.POST("/api/chat/stream", h.Stream)
}

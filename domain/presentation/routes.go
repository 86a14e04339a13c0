package presentation

import (
	"github.com/labstack/echo/v4"

	"github.com/drewby/chackgpt/internal/config"
)

// RegisterRoutes registers the presentation routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/presentation")

	g.GET("/slide/:topic/:slideNumber", h.GetSlide)
	g.GET("/topics", h.Topics)
}

// RegisterImageRoutes serves the slide images referenced by imagePath.
func RegisterImageRoutes(e *echo.Echo, cfg *config.Config) {
	e.Static("/images/presentations", cfg.APIService.ImagesDir)
}

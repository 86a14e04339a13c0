package display

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler lets the browser read and dismiss the popups.
type Handler struct {
	slides *SlideService
	videos *VideoService
}

func NewHandler(slides *SlideService, videos *VideoService) *Handler {
	return &Handler{slides: slides, videos: videos}
}

// CurrentSlide returns the slide on screen
// GET /api/ui/slide
func (h *Handler) CurrentSlide(c echo.Context) error {
	s := h.slides.Current()
	if s == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, s)
}

// CloseSlide hides the slide popup
// POST /api/ui/slide/close
func (h *Handler) CloseSlide(c echo.Context) error {
	h.slides.Close()
	return c.NoContent(http.StatusNoContent)
}

// CurrentVideo returns the video in the player
// GET /api/ui/video
func (h *Handler) CurrentVideo(c echo.Context) error {
	v := h.videos.Current()
	if v == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, v)
}

// CloseVideo stops the player
// POST /api/ui/video/close
func (h *Handler) CloseVideo(c echo.Context) error {
	h.videos.Close()
	return c.NoContent(http.StatusNoContent)
}

package video

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/drewby/chackgpt/pkg/apperror"
)

// Handler serves the video library over REST.
type Handler struct {
	svc *Service
}

// NewHandler creates a new video handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get returns one video by id or title
// GET /api/video/:identifier
func (h *Handler) Get(c echo.Context) error {
	identifier := c.Param("identifier")
	if strings.TrimSpace(identifier) == "" {
		return apperror.NewProblem(http.StatusBadRequest, "Video identifier cannot be empty").
			WithTitle("Invalid Identifier")
	}

	v := h.svc.Find(identifier)
	if v == nil {
		return apperror.NewProblem(http.StatusNotFound,
			fmt.Sprintf("Video with identifier '%s' not found. Please check the ID or title.", identifier),
		).WithTitle("Video Not Found")
	}

	return c.JSON(http.StatusOK, v)
}

// List returns every video
// GET /api/video
func (h *Handler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.All())
}

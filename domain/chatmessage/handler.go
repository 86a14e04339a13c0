package chatmessage

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/drewby/chackgpt/pkg/apperror"
)

// PopupRequest sets the slide popup visibility.
type PopupRequest struct {
	Visible *bool `json:"visible"`
}

// StateResponse reports the UI coordination state.
type StateResponse struct {
	PopupVisible bool `json:"popupVisible"`
	Streaming    bool `json:"streaming"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// NextSlide asks the agents for the next slide
// POST /api/ui/next-slide
func (h *Handler) NextSlide(c echo.Context) error {
	h.svc.RequestNextSlide()
	return c.NoContent(http.StatusAccepted)
}

// SetPopup records popup visibility
// POST /api/ui/popup
func (h *Handler) SetPopup(c echo.Context) error {
	var req PopupRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	if req.Visible == nil {
		return apperror.ErrBadRequest.WithMessage("visible is required")
	}

	h.svc.SetPopupVisible(*req.Visible)
	return c.JSON(http.StatusOK, h.state())
}

// State returns the UI state
// GET /api/ui/state
func (h *Handler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, h.state())
}

func (h *Handler) state() StateResponse {
	return StateResponse{
		PopupVisible: h.svc.PopupVisible(),
		Streaming:    h.svc.Streaming(),
	}
}

package presentation

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/drewby/chackgpt/pkg/apperror"
	"github.com/drewby/chackgpt/pkg/logger"
)

// Handler serves presentation content over REST.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates a new presentation handler
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With(logger.Scope("presentation.http"))}
}

// GetSlide returns one slide
// GET /api/presentation/slide/:topic/:slideNumber?language=
func (h *Handler) GetSlide(c echo.Context) error {
	topic := c.Param("topic")

	// Non-numeric slide numbers do not match the route.
	slideNumber, err := strconv.Atoi(c.Param("slideNumber"))
	if err != nil {
		return apperror.ErrNotFound
	}

	language := c.QueryParam("language")
	if language == "" {
		language = LanguageEnglish
	}

	if !lo.Contains(ValidLanguages, strings.ToLower(language)) {
		return apperror.NewProblem(http.StatusBadRequest,
			fmt.Sprintf("Invalid language '%s'. Valid languages are: %s", language, strings.Join(ValidLanguages, ", ")),
		).WithTitle("Invalid Language")
	}

	if !lo.Contains(ValidTopics, strings.ToLower(topic)) {
		return apperror.NewProblem(http.StatusBadRequest,
			fmt.Sprintf("Invalid topic '%s'. Valid topics are: %s", topic, strings.Join(ValidTopics, ", ")),
		).WithTitle("Invalid Topic")
	}

	if slideNumber < 1 {
		return apperror.NewProblem(http.StatusBadRequest, "Slide number must be greater than 0").
			WithTitle("Invalid Slide Number")
	}

	slide := h.svc.GetSlide(topic, slideNumber, language)
	if slide == nil {
		total := h.svc.SlideCount(topic, language)
		return apperror.NewProblem(http.StatusNotFound,
			fmt.Sprintf("Slide %d not found for topic '%s' in language '%s'. Valid range: 1-%d", slideNumber, topic, language, total),
		).WithTitle("Slide Not Found")
	}

	return c.JSON(http.StatusOK, slide)
}

// Topics lists the loaded topics
// GET /api/presentation/topics
func (h *Handler) Topics(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.AvailableTopics())
}

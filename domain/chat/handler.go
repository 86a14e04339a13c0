package chat

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/drewby/chackgpt/pkg/apperror"
	"github.com/drewby/chackgpt/pkg/llm"
	"github.com/drewby/chackgpt/pkg/logger"
	"github.com/drewby/chackgpt/pkg/sse"
)

// HistoryMessage is one earlier turn sent with a stream request.
type HistoryMessage struct {
	Role    string `json:"role"`
	Author  string `json:"author,omitempty"`
	Content string `json:"content"`
}

// StreamRequest is the body of POST /api/chat/stream.
type StreamRequest struct {
	Message string           `json:"message"`
	History []HistoryMessage `json:"history,omitempty"`
}

type Handler struct {
	hub     *Hub
	limiter *MessageRateLimiter
	log     *slog.Logger
}

func NewHandler(hub *Hub, log *slog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		limiter: NewMessageRateLimiter(hub.cfg.MessagesPerMinute, hub.cfg.MessageBurst),
		log:     log.With(logger.Scope("chat.handler")),
	}
}

// Stream runs one stateless exchange and streams it as server-sent events
// POST /api/chat/stream
func (h *Handler) Stream(c echo.Context) error {
	var req StreamRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperror.ErrBadRequest.WithMessage("message is required")
	}
	history, err := toHistory(req.History)
	if err != nil {
		return err
	}
	if !h.limiter.Allow(c.RealIP()) {
		messagesTotal.WithLabelValues("sse", "rate_limited").Inc()
		return apperror.ErrTooManyRequests
	}

	w := sse.NewWriter(c.Response().Writer)
	if err := w.Start(); err != nil {
		return apperror.ErrInternal.WithInternal(err)
	}
	defer w.Close()

	history = append(history, llm.Message{Role: llm.RoleUser, Content: req.Message})
	_, _, err = h.hub.respond(c.Request().Context(), history, &streamResponder{w: w, log: h.log})
	if err != nil {
		messagesTotal.WithLabelValues("sse", "error").Inc()
		h.log.Warn("chat stream failed", logger.Error(err))
	} else {
		messagesTotal.WithLabelValues("sse", "ok").Inc()
	}

	if err := w.WriteChat(sse.EventDone, sse.NewDoneEvent()); err != nil {
		h.log.Debug("client went away before done", logger.Error(err))
	}
	return nil
}

var historyRoles = []llm.Role{llm.RoleUser, llm.RoleAssistant}

func toHistory(in []HistoryMessage) ([]llm.Message, error) {
	out := make([]llm.Message, 0, len(in)+1)
	for i, m := range in {
		role := llm.Role(m.Role)
		if !lo.Contains(historyRoles, role) {
			return nil, apperror.ErrBadRequest.WithMessage("history role must be user or assistant").
				WithDetails(map[string]any{"index": i, "role": m.Role})
		}
		out = append(out, llm.Message{Role: role, Author: m.Author, Content: m.Content})
	}
	return out, nil
}

type streamResponder struct {
	w   *sse.Writer
	log *slog.Logger
}

func (r *streamResponder) write(t sse.ChatEventType, data any) {
	if err := r.w.WriteChat(t, data); err != nil {
		r.log.Debug("dropping event", slog.String("event", string(t)), logger.Error(err))
	}
}

func (r *streamResponder) agentChanged(agent string) {
	r.write(sse.EventAgent, sse.NewAgentEvent(agent))
}

func (r *streamResponder) token(text string) {
	r.write(sse.EventToken, sse.NewTokenEvent(text))
}

func (r *streamResponder) complete(tokenCount int) {
	r.write(sse.EventComplete, sse.NewCompleteEvent(tokenCount))
}

func (r *streamResponder) fail(message string) {
	r.write(sse.EventError, sse.NewErrorEvent(message))
}

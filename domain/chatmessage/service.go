package chatmessage

import (
	"log/slog"
	"sync"

	"github.com/drewby/chackgpt/pkg/events"
	"github.com/drewby/chackgpt/pkg/logger"
)

// NextSlideMessage is the chat text sent on the user's behalf when the
// presenter asks for the next slide.
const NextSlideMessage = "Next Slide"

// Service coordinates UI state between the chat pane, the slide popup and
// the hub. Every event is delivered synchronously to its subscribers.
type Service struct {
	log *slog.Logger

	// popupMu and streamMu serialize each state change with its
	// notification. mu guards the fields.
	popupMu      sync.Mutex
	streamMu     sync.Mutex
	mu           sync.Mutex
	popupVisible bool
	streaming    bool

	MessageRequested       *events.Topic[string]
	ChatMessageReceived    *events.Topic[string]
	PopupVisibilityChanged *events.Topic[bool]
	NextSlideRequested     *events.Signal
	StreamingStateChanged  *events.Topic[bool]
	AgentChanged           *events.Topic[string]
}

func NewService(log *slog.Logger) *Service {
	log = log.With(logger.Scope("chatmessage.svc"))
	return &Service{
		log:                    log,
		MessageRequested:       events.NewTopic[string]("chatmessage.message_requested", log),
		ChatMessageReceived:    events.NewTopic[string]("chatmessage.received", log),
		PopupVisibilityChanged: events.NewTopic[bool]("chatmessage.popup", log),
		NextSlideRequested:     events.NewSignal("chatmessage.next_slide", log),
		StreamingStateChanged:  events.NewTopic[bool]("chatmessage.streaming", log),
		AgentChanged:           events.NewTopic[string]("chatmessage.agent", log),
	}
}

func (s *Service) PopupVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popupVisible
}

// SetPopupVisible notifies only when the visibility changes.
func (s *Service) SetPopupVisible(v bool) {
	s.popupMu.Lock()
	defer s.popupMu.Unlock()

	s.mu.Lock()
	changed := s.popupVisible != v
	s.popupVisible = v
	s.mu.Unlock()

	if changed {
		s.PopupVisibilityChanged.Emit(v)
	}
}

func (s *Service) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// UpdateStreamingState notifies only when the state changes.
func (s *Service) UpdateStreamingState(v bool) {
	s.streamMu.Lock()
	defer s.streamMu.Unlock()

	s.mu.Lock()
	changed := s.streaming != v
	s.streaming = v
	s.mu.Unlock()

	if changed {
		s.log.Debug("streaming state changed", slog.Bool("streaming", v))
		s.StreamingStateChanged.Emit(v)
	}
}

// RequestMessage asks the chat pane to send message as the user.
func (s *Service) RequestMessage(message string) {
	s.log.Info("message requested", slog.String("message", message))
	s.MessageRequested.Emit(message)
}

// RequestNextSlide fires NextSlideRequested, then requests the
// NextSlideMessage chat message.
func (s *Service) RequestNextSlide() {
	s.log.Info("next slide requested")
	events.Fire(s.NextSlideRequested)
	s.RequestMessage(NextSlideMessage)
}

func (s *Service) NotifyChatMessage(token string) {
	s.ChatMessageReceived.Emit(token)
}

func (s *Service) NotifyAgentChange(agent string) {
	s.log.Info("agent changed", slog.String("agent", agent))
	s.AgentChanged.Emit(agent)
}

// Package broadcast forwards avatar, display and chat pane events to every
// connected hub client.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"go.uber.org/fx"

	"github.com/drewby/chackgpt/domain/avatar"
	"github.com/drewby/chackgpt/domain/chatmessage"
	"github.com/drewby/chackgpt/domain/display"
	"github.com/drewby/chackgpt/pkg/logger"
)

// Client methods invoked by the broadcaster.
const (
	MethodEmotionChanged         = "EmotionChanged"
	MethodDrewEmotionChanged     = "DrewEmotionChanged"
	MethodSlideDisplayRequested  = "SlideDisplayRequested"
	MethodSlideCloseRequested    = "SlideCloseRequested"
	MethodVideoDisplayRequested  = "VideoDisplayRequested"
	MethodVideoCloseRequested    = "VideoCloseRequested"
	MethodMessageRequested       = "MessageRequested"
	MethodNextSlideRequested     = "NextSlideRequested"
	MethodPopupVisibilityChanged = "PopupVisibilityChanged"
	MethodStreamingStateChanged  = "StreamingStateChanged"
)

// Clients sends a method invocation to every connected client.
type Clients interface {
	Broadcast(method string, args ...any)
}

type Params struct {
	fx.In

	Clients  Clients
	Chack    *avatar.ChackService
	Drew     *avatar.DrewService
	Slides   *display.SlideService
	Videos   *display.VideoService
	Messages *chatmessage.Service
	Log      *slog.Logger
}

// Service subscribes to the UI services while started.
type Service struct {
	p   Params
	log *slog.Logger

	mu     sync.Mutex
	unsubs []func()
}

func NewService(p Params) *Service {
	return &Service{p: p, log: p.Log.With(logger.Scope("broadcast"))}
}

// Start subscribes to every event source. Calling it twice is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.unsubs) > 0 {
		return
	}

	c := s.p.Clients
	s.unsubs = []func(){
		s.p.Chack.Subscribe(func(e string) {
			c.Broadcast(MethodEmotionChanged, strings.ToLower(e))
		}),
		s.p.Drew.Subscribe(func(e string) {
			c.Broadcast(MethodDrewEmotionChanged, strings.ToLower(e))
		}),
		s.p.Slides.OnDisplay(func(info display.SlideInfo) {
			s.broadcastJSON(MethodSlideDisplayRequested, info)
		}),
		s.p.Slides.OnClose(func() {
			c.Broadcast(MethodSlideCloseRequested)
		}),
		s.p.Videos.OnDisplay(func(info display.VideoInfo) {
			s.broadcastJSON(MethodVideoDisplayRequested, info)
		}),
		s.p.Videos.OnClose(func() {
			c.Broadcast(MethodVideoCloseRequested)
		}),
		s.p.Messages.MessageRequested.Subscribe(func(m string) {
			c.Broadcast(MethodMessageRequested, m)
		}),
		s.p.Messages.NextSlideRequested.Subscribe(func(struct{}) {
			c.Broadcast(MethodNextSlideRequested)
		}),
		s.p.Messages.PopupVisibilityChanged.Subscribe(func(v bool) {
			c.Broadcast(MethodPopupVisibilityChanged, v)
		}),
		s.p.Messages.StreamingStateChanged.Subscribe(func(v bool) {
			c.Broadcast(MethodStreamingStateChanged, v)
		}),
	}
	s.log.Info("broadcasting started", slog.Int("subscriptions", len(s.unsubs)))
}

// Stop removes every subscription.
func (s *Service) Stop() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	if len(unsubs) > 0 {
		s.log.Info("broadcasting stopped")
	}
}

// broadcastJSON sends v as a JSON string, the shape the browser parses.
func (s *Service) broadcastJSON(method string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to encode broadcast payload", slog.String("method", method), logger.Error(err))
		return
	}
	s.p.Clients.Broadcast(method, string(data))
}

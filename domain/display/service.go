package display

import (
	"log/slog"
	"sync"

	"github.com/drewby/chackgpt/pkg/events"
	"github.com/drewby/chackgpt/pkg/logger"
)

// SlideService tracks the slide shown in the popup.
type SlideService struct {
	sanitizer *Sanitizer
	log       *slog.Logger

	// emitMu keeps notifications in the order updates were applied.
	emitMu  sync.Mutex
	mu      sync.Mutex
	current *SlideInfo

	displayed *events.Topic[SlideInfo]
	closed    *events.Signal
}

func NewSlideService(sanitizer *Sanitizer, log *slog.Logger) *SlideService {
	log = log.With(logger.Scope("display.slide"))
	return &SlideService{
		sanitizer: sanitizer,
		log:       log,
		displayed: events.NewTopic[SlideInfo]("slide.displayed", log),
		closed:    events.NewSignal("slide.closed", log),
	}
}

// Current returns the slide on screen, or nil.
func (s *SlideService) Current() *SlideInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// Display shows info, replacing any current slide. It always notifies.
func (s *SlideService) Display(info SlideInfo) SlideInfo {
	info = s.sanitizer.Slide(info)

	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.current = &info
	s.mu.Unlock()

	s.log.Info("displaying slide",
		slog.String("topic", info.Topic),
		slog.Int("slide", info.SlideNumber),
		slog.String("title", info.Title),
	)
	s.displayed.Emit(info)
	return info
}

// Close hides the current slide. It notifies only when a slide was shown.
func (s *SlideService) Close() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if prev == nil {
		return
	}
	s.log.Info("closing slide", slog.String("topic", prev.Topic), slog.Int("slide", prev.SlideNumber))
	events.Fire(s.closed)
}

func (s *SlideService) OnDisplay(fn func(SlideInfo)) (unsubscribe func()) {
	return s.displayed.Subscribe(fn)
}

func (s *SlideService) OnClose(fn func()) (unsubscribe func()) {
	return s.closed.Subscribe(func(struct{}) { fn() })
}

// VideoService tracks the video in the full-screen player.
type VideoService struct {
	sanitizer *Sanitizer
	log       *slog.Logger

	// emitMu keeps notifications in the order updates were applied.
	emitMu  sync.Mutex
	mu      sync.Mutex
	current *VideoInfo

	displayed *events.Topic[VideoInfo]
	closed    *events.Signal
}

func NewVideoService(sanitizer *Sanitizer, log *slog.Logger) *VideoService {
	log = log.With(logger.Scope("display.video"))
	return &VideoService{
		sanitizer: sanitizer,
		log:       log,
		displayed: events.NewTopic[VideoInfo]("video.displayed", log),
		closed:    events.NewSignal("video.closed", log),
	}
}

func (s *VideoService) Current() *VideoInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

func (s *VideoService) Display(info VideoInfo) VideoInfo {
	info = s.sanitizer.Video(info)

	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.current = &info
	s.mu.Unlock()

	s.log.Info("displaying video", slog.String("id", info.ID), slog.String("title", info.Title))
	s.displayed.Emit(info)
	return info
}

func (s *VideoService) Close() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if prev == nil {
		return
	}
	s.log.Info("closing video", slog.String("title", prev.Title))
	events.Fire(s.closed)
}

func (s *VideoService) OnDisplay(fn func(VideoInfo)) (unsubscribe func()) {
	return s.displayed.Subscribe(fn)
}

func (s *VideoService) OnClose(fn func()) (unsubscribe func()) {
	return s.closed.Subscribe(func(struct{}) { fn() })
}

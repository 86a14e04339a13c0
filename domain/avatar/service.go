package avatar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/drewby/chackgpt/pkg/events"
	"github.com/drewby/chackgpt/pkg/logger"
)

const storeTimeout = 2 * time.Second

// Service holds one character's current emotion and notifies subscribers
// when it changes.
type Service struct {
	character string
	allowed   []string
	store     Store
	log       *slog.Logger

	// emitMu serializes whole updates so subscribers and the store see
	// changes in the order they were applied. mu guards current only, so
	// subscribers may call Current.
	emitMu  sync.Mutex
	mu      sync.Mutex
	current string
	changed *events.Topic[string]
}

func newService(character string, allowed []string, store Store, log *slog.Logger) *Service {
	log = log.With(logger.Scope("avatar."+character), slog.String("character", character))
	return &Service{
		character: character,
		allowed:   allowed,
		store:     store,
		log:       log,
		current:   Neutral,
		changed:   events.NewTopic[string]("avatar."+character, log),
	}
}

// ChackService tracks ChackGPT's avatar.
type ChackService struct{ *Service }

// DrewService tracks DrewGPT's avatar.
type DrewService struct{ *Service }

func NewChackService(store Store, log *slog.Logger) *ChackService {
	return &ChackService{newService(CharacterChack, ChackEmotions, store, log)}
}

func NewDrewService(store Store, log *slog.Logger) *DrewService {
	return &DrewService{newService(CharacterDrew, DrewEmotions, store, log)}
}

// Character returns the tracked character key.
func (s *Service) Character() string { return s.character }

// Allowed lists the valid emotions.
func (s *Service) Allowed() []string { return s.allowed }

// Current returns the current emotion.
func (s *Service) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Parse resolves v to one of the allowed emotions, ignoring case.
func (s *Service) Parse(v string) (string, error) {
	v = strings.TrimSpace(v)
	for _, e := range s.allowed {
		if strings.EqualFold(e, v) {
			return e, nil
		}
	}
	return "", fmt.Errorf("invalid emotion %q: valid values are %s", v, strings.Join(s.allowed, ", "))
}

// Set changes the emotion. Subscribers are notified only when the value
// actually changes. The store write is best effort.
func (s *Service) Set(ctx context.Context, emotion string) (string, error) {
	e, err := s.Parse(emotion)
	if err != nil {
		return "", err
	}

	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	old := s.current
	s.current = e
	s.mu.Unlock()

	if old == e {
		s.log.Debug("emotion unchanged", slog.String("emotion", e))
		return e, nil
	}

	s.log.Info("emotion changed", slog.String("from", old), slog.String("to", e))
	emotionChanges.WithLabelValues(s.character, e).Inc()
	s.changed.Emit(e)

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := s.store.Save(sctx, s.character, e); err != nil {
		s.log.Warn("failed to persist emotion", logger.Error(err))
	}
	return e, nil
}

// Subscribe registers fn for emotion changes.
func (s *Service) Subscribe(fn func(emotion string)) (unsubscribe func()) {
	return s.changed.Subscribe(fn)
}

// Restore loads the stored emotion without notifying subscribers.
func (s *Service) Restore(ctx context.Context) error {
	v, ok, err := s.store.Load(ctx, s.character)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	e, err := s.Parse(v)
	if err != nil {
		s.log.Warn("ignoring stored emotion", slog.String("value", v))
		return nil
	}

	s.emitMu.Lock()
	s.mu.Lock()
	s.current = e
	s.mu.Unlock()
	s.emitMu.Unlock()
	s.log.Info("emotion restored", slog.String("emotion", e))
	return nil
}

package presentation

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/drewby/chackgpt/pkg/logger"
)

//go:embed data/*.json
var contentFS embed.FS

var errNoContent = errors.New("no presentation content loaded")

// loadedLanguages lists the content languages read at startup.
var loadedLanguages = []string{LanguageJapanese}

// Service serves slides from decks loaded once at construction.
type Service struct {
	decks map[string]map[string]Deck // language -> topic -> deck
	log   *slog.Logger
}

// NewService loads the embedded presentation content.
func NewService(log *slog.Logger) (*Service, error) {
	return newServiceFromFS(contentFS, log)
}

func newServiceFromFS(fsys fs.FS, log *slog.Logger) (*Service, error) {
	s := &Service{
		decks: make(map[string]map[string]Deck),
		log:   log.With(logger.Scope("presentation.svc")),
	}

	for _, lang := range loadedLanguages {
		decks, err := loadDecks(fsys, lang)
		if err != nil {
			return nil, err
		}
		if len(decks) == 0 {
			s.log.Warn("no presentation decks found", slog.String("language", lang))
			continue
		}
		s.decks[lang] = decks

		topics := lo.Keys(decks)
		sort.Strings(topics)
		s.log.Info("loaded presentation decks",
			slog.String("language", lang),
			slog.Int("count", len(decks)),
			slog.String("topics", strings.Join(topics, ", ")),
		)
	}

	return s, nil
}

func loadDecks(fsys fs.FS, lang string) (map[string]Deck, error) {
	name := fmt.Sprintf("data/presentation-content%s.json", fileSuffix(lang))
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var file contentFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	decks := make(map[string]Deck, len(file.Decks))
	for _, d := range file.Decks {
		key := strings.ToLower(d.Topic)
		for i := range d.Slides {
			d.Slides[i].CurrentSlideNumber = i + 1
			d.Slides[i].TotalSlides = len(d.Slides)
			d.Slides[i].Topic = key
		}
		decks[key] = d
	}
	return decks, nil
}

// GetSlide returns slide n (1-based) of topic in language, or nil when any
// of the three does not resolve.
func (s *Service) GetSlide(topic string, n int, language string) *Slide {
	decks, ok := s.decks[strings.ToLower(language)]
	if !ok {
		s.log.Warn("language not found", slog.String("language", language))
		return nil
	}

	deck, ok := decks[strings.ToLower(topic)]
	if !ok {
		s.log.Warn("topic not found", slog.String("topic", topic), slog.String("language", language))
		return nil
	}

	if n < 1 || n > len(deck.Slides) {
		s.log.Warn("slide number out of range",
			slog.Int("slide", n),
			slog.String("topic", topic),
			slog.Int("max", len(deck.Slides)),
		)
		return nil
	}

	slide := deck.Slides[n-1]
	return &slide
}

// SlideCount returns how many slides topic has in language, 0 when unknown.
func (s *Service) SlideCount(topic, language string) int {
	deck, ok := s.decks[strings.ToLower(language)][strings.ToLower(topic)]
	if !ok {
		return 0
	}
	return len(deck.Slides)
}

// AvailableTopics returns the Japanese deck keys, sorted.
func (s *Service) AvailableTopics() []string {
	topics := lo.Keys(s.decks[LanguageJapanese])
	sort.Strings(topics)
	return topics
}

// Name implements health.Checker.
func (s *Service) Name() string { return "presentation" }

// Check fails when no content was loaded.
func (s *Service) Check(context.Context) error {
	if len(s.decks) == 0 {
		return errNoContent
	}
	return nil
}

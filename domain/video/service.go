package video

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/drewby/chackgpt/pkg/logger"
)

//go:embed data/video-library.json
var libraryFS embed.FS

const libraryFile = "data/video-library.json"

// Service resolves videos by id or title.
type Service struct {
	videos  []Video
	byID    map[string]Video
	byTitle map[string]Video
	log     *slog.Logger
}

// NewService loads the embedded video library.
func NewService(log *slog.Logger) (*Service, error) {
	return newServiceFromFS(libraryFS, log)
}

func newServiceFromFS(fsys fs.FS, log *slog.Logger) (*Service, error) {
	raw, err := fs.ReadFile(fsys, libraryFile)
	if err != nil {
		return nil, fmt.Errorf("read video library: %w", err)
	}

	var lib library
	if err := json.Unmarshal(raw, &lib); err != nil {
		return nil, fmt.Errorf("decode video library: %w", err)
	}
	if err := validator.New().Struct(lib); err != nil {
		return nil, fmt.Errorf("invalid video library: %w", err)
	}

	s := &Service{
		videos:  lib.Videos,
		byID:    make(map[string]Video, len(lib.Videos)),
		byTitle: make(map[string]Video, len(lib.Videos)),
		log:     log.With(logger.Scope("video.svc")),
	}
	for _, v := range lib.Videos {
		id := strings.ToLower(v.ID)
		if _, dup := s.byID[id]; dup {
			return nil, fmt.Errorf("duplicate video id %q", v.ID)
		}
		s.byID[id] = v
		s.byTitle[strings.ToLower(v.Title)] = v
	}

	s.log.Info("loaded video library", slog.Int("count", len(lib.Videos)))
	return s, nil
}

// GetByID looks a video up by id, ignoring case.
func (s *Service) GetByID(id string) *Video {
	v, ok := s.byID[strings.ToLower(id)]
	if !ok {
		s.log.Warn("video id not found", slog.String("id", id))
		return nil
	}
	return &v
}

// GetByTitle looks a video up by exact title, ignoring case.
func (s *Service) GetByTitle(title string) *Video {
	v, ok := s.byTitle[strings.ToLower(title)]
	if !ok {
		s.log.Warn("video title not found", slog.String("title", title))
		return nil
	}
	return &v
}

// Find tries the id first and falls back to the title.
func (s *Service) Find(identifier string) *Video {
	if v := s.GetByID(identifier); v != nil {
		return v
	}
	return s.GetByTitle(identifier)
}

// All returns every video in library order.
func (s *Service) All() []Video {
	out := make([]Video, len(s.videos))
	copy(out, s.videos)
	return out
}

func (s *Service) Name() string { return "video" }

func (s *Service) Check(context.Context) error {
	if len(s.videos) == 0 {
		return errors.New("video library is empty")
	}
	return nil
}

// Package videos serves the demo's media files: mp4 videos with range
// support for seeking and the static images the slides reference.
package videos

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/drewby/chackgpt/internal/config"
	"github.com/drewby/chackgpt/pkg/apperror"
	"github.com/drewby/chackgpt/pkg/logger"
)

// ContentType is sent for every video regardless of extension.
const ContentType = "video/mp4"

// Handler serves files below the web root
type Handler struct {
	log       *slog.Logger
	videosDir string
	imagesDir string
}

// NewHandler creates a handler rooted at the configured web root
func NewHandler(cfg *config.Config, log *slog.Logger) *Handler {
	return &Handler{
		log:       log.With(logger.Scope("videos")),
		videosDir: filepath.Join(cfg.Content.WebRoot, "videos"),
		imagesDir: filepath.Join(cfg.Content.WebRoot, "images"),
	}
}

// ServeVideo streams a video, honoring Range requests
// GET /videos/:filename
func (h *Handler) ServeVideo(c echo.Context) error {
	path, ok := resolve(h.videosDir, c.Param("filename"))
	if !ok {
		return apperror.ErrNotFound
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return apperror.ErrNotFound
	}
	if err != nil {
		return apperror.ErrInternal.WithInternal(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return apperror.ErrInternal.WithInternal(err)
	}
	if info.IsDir() {
		return apperror.ErrNotFound
	}

	h.log.Debug("serving video",
		slog.String("file", info.Name()),
		slog.Int64("size", info.Size()),
		slog.String("range", c.Request().Header.Get("Range")),
	)
	c.Response().Header().Set(echo.HeaderContentType, ContentType)
	http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), f)
	return nil
}

// resolve joins name onto dir and rejects anything that would leave dir.
func resolve(dir, name string) (string, bool) {
	if name == "" || name == "." || strings.ContainsAny(name, `/\`) {
		return "", false
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", false
	}
	if !strings.HasPrefix(absPath, absDir+string(filepath.Separator)) {
		return "", false
	}
	return absPath, true
}

// Package sse writes Server-Sent Events to HTTP responses.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("SSE writer is closed")

// Writer serializes events onto an http.ResponseWriter and flushes after each
// one. It is safe for concurrent use.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	started bool
	closed  bool
}

// NewWriter wraps w. Call Start once the request has been validated.
func NewWriter(w http.ResponseWriter) *Writer {
	flusher, _ := w.(http.Flusher)
	return &Writer{
		w:       w,
		flusher: flusher,
	}
}

// Start writes the stream headers. Calling it again is a no-op.
func (s *Writer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.flusher == nil {
		return errors.New("response writer does not support flushing")
	}

	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()

	s.started = true
	return nil
}

// WriteEvent writes a named event with a JSON payload.
func (s *Writer) WriteEvent(eventName string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal SSE data: %w", err)
	}

	var frame string
	if eventName != "" {
		frame = "event: " + eventName + "\n"
	}
	return s.write(frame + "data: " + string(payload) + "\n\n")
}

// WriteChat writes one of the chat events under its type name.
func (s *Writer) WriteChat(t ChatEventType, data any) error {
	return s.WriteEvent(string(t), data)
}

// WriteComment writes a keep-alive comment.
func (s *Writer) WriteComment(comment string) error {
	return s.write(": " + comment + "\n\n")
}

func (s *Writer) write(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, err := fmt.Fprint(s.w, frame); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Close rejects further writes.
func (s *Writer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Writer) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

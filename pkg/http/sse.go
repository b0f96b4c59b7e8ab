package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// SSEWriter writes a text/event-stream response. It is not safe for
// concurrent use; one goroutine must own it.
type SSEWriter struct {
	w            http.ResponseWriter
	rc           *http.ResponseController
	writeTimeout time.Duration
}

// NewSSEWriter sends the stream headers and lifts the server write deadline,
// which would otherwise cut long-lived streams.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return nil, err
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &SSEWriter{w: w, rc: rc}
	return s, s.flush()
}

// SetWriteTimeout bounds every following write. A peer that stops reading
// then fails the write instead of holding the stream open. Zero disables it.
func (s *SSEWriter) SetWriteTimeout(d time.Duration) {
	s.writeTimeout = d
}

func (s *SSEWriter) Retry(d time.Duration) error {
	if err := s.armDeadline(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "retry: %d\n\n", d.Milliseconds()); err != nil {
		return err
	}
	return s.flush()
}

// Event writes one named event. An empty id leaves the client's last event id
// untouched.
func (s *SSEWriter) Event(id, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := s.armDeadline(); err != nil {
		return err
	}
	if id != "" {
		if _, err := fmt.Fprintf(s.w, "id: %s\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return err
	}
	return s.flush()
}

// Comment writes a line clients ignore. Used for heartbeats.
func (s *SSEWriter) Comment(text string) error {
	if err := s.armDeadline(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	return s.flush()
}

func (s *SSEWriter) flush() error {
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

func (s *SSEWriter) armDeadline() error {
	if s.writeTimeout <= 0 {
		return nil
	}
	err := s.rc.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// Package sse writes Server-Sent Events. Browsers watching the mirror use it
// to refresh when another tab or process mutates a collection.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Stream is an open SSE connection to one client.
type Stream struct {
	w       http.ResponseWriter
	r       *http.Request
	flusher http.Flusher
}

// New sets the event-stream headers. It returns nil and writes a 500 when w
// cannot flush.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, r: r, flusher: flusher}
}

// Send writes a named event with a JSON payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("sse: write: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// Comment writes an SSE comment line, used as a keepalive.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return fmt.Errorf("sse: write: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// Closed reports whether the client went away.
func (s *Stream) Closed() bool {
	select {
	case <-s.r.Context().Done():
		return true
	default:
		return false
	}
}

// Pipe forwards every payload from events as a named event until the client
// disconnects, events closes or a write fails. A heartbeat comment goes out
// every interval when interval > 0.
func (s *Stream) Pipe(event string, events <-chan interface{}, interval time.Duration) error {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-s.r.Context().Done():
			return nil
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.Send(event, payload); err != nil {
				return err
			}
		case <-tick:
			if err := s.Comment("ping"); err != nil {
				return err
			}
		}
	}
}

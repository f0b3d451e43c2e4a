package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	mstream "github.com/haowjy/meridian-stream-go"
)

// EventWriter writes SSE frames to one client. Writes are serialised so the
// keep-alive goroutine and the event loop can share it.
type EventWriter struct {
	mu       sync.Mutex
	w        http.ResponseWriter
	flusher  http.Flusher
	clientID string
}

// NewEventWriter prepares w for streaming and writes the SSE headers.
// It fails when the response writer cannot flush.
func NewEventWriter(w http.ResponseWriter, clientID string) (*EventWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &EventWriter{
		w:        w,
		flusher:  flusher,
		clientID: clientID,
	}, nil
}

// ClientID identifies the connection in logs
func (s *EventWriter) ClientID() string {
	return s.clientID
}

// WriteEvent writes one named event with a JSON payload and flushes
func (s *EventWriter) WriteEvent(name string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return fmt.Errorf("write %s event: %w", name, err)
	}
	s.flusher.Flush()
	return nil
}

// WriteStreamEvent writes an event produced by a stream. Its ID is sent
// when set so clients can resume with Last-Event-ID.
func (s *EventWriter) WriteStreamEvent(event mstream.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID != "" {
		if _, err := fmt.Fprintf(s.w, "id: %s\n", event.ID); err != nil {
			return fmt.Errorf("write event id: %w", err)
		}
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
		return fmt.Errorf("write %s event: %w", event.Type, err)
	}
	s.flusher.Flush()
	return nil
}

// WriteKeepAlive writes an SSE comment (: keepalive) and flushes.
// Lines starting with ':' are ignored by clients.
func (s *EventWriter) WriteKeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}

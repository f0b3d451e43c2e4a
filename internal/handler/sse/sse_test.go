package sse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	mstream "github.com/haowjy/meridian-stream-go"
)

func TestEventWriter_WriteEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	writer, err := NewEventWriter(rec, "client-1")
	if err != nil {
		t.Fatalf("NewEventWriter() error = %v", err)
	}

	if err := writer.WriteEvent("progress", map[string]int{"progress": 40}); err != nil {
		t.Fatal(err)
	}
	if err := writer.WriteKeepAlive(); err != nil {
		t.Fatal(err)
	}

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	want := "event: progress\ndata: {\"progress\":40}\n\n: keepalive\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestEventWriter_WriteStreamEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	writer, err := NewEventWriter(rec, "client-2")
	if err != nil {
		t.Fatalf("NewEventWriter() error = %v", err)
	}
	if writer.ClientID() != "client-2" {
		t.Errorf("ClientID() = %q", writer.ClientID())
	}

	event := mstream.NewEvent([]byte(`{"status":"completed"}`)).WithType("done")
	if err := writer.WriteStreamEvent(event); err != nil {
		t.Fatal(err)
	}

	want := "event: done\ndata: {\"status\":\"completed\"}\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

type countingWriter struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (c *countingWriter) WriteKeepAlive() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.fail {
		return errors.New("closed")
	}
	return nil
}

func (c *countingWriter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestStartKeepAlive(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("stops on write error", func(t *testing.T) {
		writer := &countingWriter{fail: true}
		stopped := StartKeepAlive(context.Background(), time.Millisecond, writer, logger)

		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("keep-alive did not stop after a failed write")
		}
		if writer.count() != 1 {
			t.Errorf("calls = %d, want 1", writer.count())
		}
	})

	t.Run("stops on cancel", func(t *testing.T) {
		writer := &countingWriter{}
		ctx, cancel := context.WithCancel(context.Background())
		stopped := StartKeepAlive(ctx, time.Millisecond, writer, logger)

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("keep-alive did not stop")
		}
		if writer.count() == 0 {
			t.Error("no keep-alive written")
		}
	})
}

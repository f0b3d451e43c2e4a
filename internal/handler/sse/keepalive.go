package sse

import (
	"context"
	"log/slog"
	"time"
)

// KeepAliveWriter writes a keep-alive frame (an SSE comment)
type KeepAliveWriter interface {
	WriteKeepAlive() error
}

// StartKeepAlive pings writer every interval until ctx is done or a write
// fails. The returned channel closes when pinging stops, so a failed write
// (client gone) can end the stream.
func StartKeepAlive(ctx context.Context, interval time.Duration, writer KeepAliveWriter, logger *slog.Logger) <-chan struct{} {
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := writer.WriteKeepAlive(); err != nil {
					logger.Warn("keep-alive write failed, stopping", "error", err)
					return
				}
			}
		}
	}()

	return stopped
}

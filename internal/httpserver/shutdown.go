package httpserver

import (
	"context"
	"time"
)

// ShutdownTimeout controls how long to wait for graceful shutdowns.
var ShutdownTimeout = 10 * time.Second

// Shutdown gracefully terminates the HTTP server. A non-positive timeout
// falls back to ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = ShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.inner.Shutdown(ctx)
}

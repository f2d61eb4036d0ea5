package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server timeouts. Reads and writes are generous to leave room for media uploads.
const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 2 * time.Minute
	WriteTimeout      = 2 * time.Minute
	IdleTimeout       = time.Minute
)

// Server wraps the http.Server with sensible defaults.
type Server struct {
	inner *http.Server
}

// New constructs a server for handler. The logger receives errors from the
// underlying http.Server.
func New(handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		inner: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: ReadHeaderTimeout,
			ReadTimeout:       ReadTimeout,
			WriteTimeout:      WriteTimeout,
			IdleTimeout:       IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
	}
}

// Listen creates a TCP listener on addr. Use "127.0.0.1:0" for a random port.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}

// Serve starts serving on listener inside grp and shuts down gracefully once
// ctx is canceled, waiting at most shutdownTimeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, grp *errgroup.Group, listener net.Listener, shutdownTimeout time.Duration) {
	s.inner.BaseContext = func(net.Listener) context.Context { return ctx }

	grp.Go(func() error {
		err := s.inner.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	grp.Go(func() error {
		<-ctx.Done()
		return s.Shutdown(context.WithoutCancel(ctx), shutdownTimeout)
	})
}

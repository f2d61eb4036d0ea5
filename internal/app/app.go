package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sohansahooo/vidshort/internal/auth"
	"github.com/sohansahooo/vidshort/internal/config"
	"github.com/sohansahooo/vidshort/internal/db"
	"github.com/sohansahooo/vidshort/internal/handlers"
	"github.com/sohansahooo/vidshort/internal/middleware"
)

// App is the assembled vidshort HTTP application.
type App struct {
	Handler http.Handler

	cache   *db.Cache
	closers []func() error
}

// New bootstraps the application. The database connection is established
// lazily on the first request that needs it.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	cache := db.NewCache(db.PostgresConnector(cfg.DatabaseURL), cfg.ConnectTimeout)

	deps, err := buildDependencies(ctx, cache, cfg, logger)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps.handlers)

	var handler http.Handler = mux
	handler = middleware.Session(deps.sessions, auth.DefaultRoutePolicy())(handler)
	handler = middleware.RequestLogger(logger)(handler)

	return &App{Handler: handler, cache: cache, closers: deps.closers}, nil
}

// Close releases the database pool and any auxiliary clients.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	a.cache.Reset()
	return errors.Join(errs...)
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sohansahooo/vidshort/internal/auth"
	"github.com/sohansahooo/vidshort/internal/config"
	"github.com/sohansahooo/vidshort/internal/db"
	"github.com/sohansahooo/vidshort/internal/handlers"
	"github.com/sohansahooo/vidshort/internal/media"
	"github.com/sohansahooo/vidshort/internal/middleware"
	"github.com/sohansahooo/vidshort/internal/repositories"
	"github.com/sohansahooo/vidshort/internal/storage"
	"github.com/sohansahooo/vidshort/internal/videos"
)

// dependencies is everything the HTTP layer needs plus what must be released
// on shutdown.
type dependencies struct {
	handlers handlers.Dependencies
	sessions *auth.Manager
	closers  []func() error
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, source db.Source, cfg config.Config, logger *slog.Logger) (dependencies, error) {
	var deps dependencies

	tokens, err := auth.NewTokenIssuer(cfg.Session.Secret, cfg.Session.AccessTTL)
	if err != nil {
		return deps, fmt.Errorf("token issuer: %w", err)
	}

	sessionStore, closeStore, err := buildSessionStore(ctx, source, cfg.Session)
	if err != nil {
		return deps, err
	}
	if closeStore != nil {
		deps.closers = append(deps.closers, closeStore)
	}
	deps.sessions = auth.NewManager(tokens, cfg.Session.RefreshTTL, sessionStore)

	users := repositories.NewPostgresUserRepository(source)
	videoRepo := repositories.NewPostgresVideoRepository(source)

	deps.handlers = handlers.Dependencies{
		Database:       source,
		Users:          users,
		Authenticator:  auth.NewVerifier(users),
		Sessions:       deps.sessions,
		Limiter:        middleware.NewRateLimiter(cfg.RateLimit, middleware.DefaultVisitorTTL),
		TrustedProxies: cfg.TrustedProxies,
		Videos:         videoRepo,
		Feed:           videos.NewCachingLister(videoRepo, cfg.ListingCacheTTL),
		Signer:         media.NewSigner(cfg.Media),
		SecureCookies:  cfg.SecureCookies,
	}

	if cfg.Media.PrivateKey == "" {
		logger.Warn("media private key not configured; upload authentication will fail")
	}

	if cfg.ObjectStore.Bucket != "" {
		objects, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return deps, err
		}
		deps.handlers.Storage = objects
	} else {
		logger.Info("object store not configured; server-side uploads disabled")
	}

	return deps, nil
}

func buildSessionStore(ctx context.Context, source db.Source, cfg config.SessionConfig) (auth.SessionStore, func() error, error) {
	switch cfg.Store {
	case config.SessionStoreRedis:
		rdb, err := repositories.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewRedisSessionStore(rdb), rdb.Close, nil
	case config.SessionStoreMemory:
		return auth.NewInMemorySessionStore(), nil, nil
	default:
		return repositories.NewPostgresSessionStore(source), nil, nil
	}
}

package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver for goose
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

const (
	migrationMaxRetries  = 3
	migrationBaseBackoff = 100 * time.Millisecond
	migrationMaxBackoff  = 3 * time.Second
)

var retryablePgErrorCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// Migrate runs the embedded schema migrations against databaseURL. command is
// one of "up" (the default), "status" or "down".
func Migrate(ctx context.Context, logger *slog.Logger, databaseURL, command string) error {
	handle, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration handle: %w", err)
	}
	defer handle.Close()

	if err := handle.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	goose.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	switch command {
	case "up", "":
		return withRetry(ctx, logger, func() error {
			return goose.UpContext(ctx, handle, migrationsDir)
		})
	case "status":
		return goose.StatusContext(ctx, handle, migrationsDir)
	case "down":
		return goose.DownContext(ctx, handle, migrationsDir)
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

func withRetry(ctx context.Context, logger *slog.Logger, apply func() error) error {
	var err error
	for attempt := 0; attempt < migrationMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * migrationBaseBackoff
			if backoff > migrationMaxBackoff {
				backoff = migrationMaxBackoff
			}
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err = apply(); err == nil {
			return nil
		}
		if !shouldRetryMigration(err) {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Warn("transient error applying migrations",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", migrationMaxRetries),
			slog.Any("error", err),
		)
	}

	return fmt.Errorf("apply migrations: exceeded max retries (%d): %w", migrationMaxRetries, err)
}

func shouldRetryMigration(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := retryablePgErrorCodes[pgErr.Code]; ok {
			return true
		}
	}

	return errors.Is(err, pgx.ErrTxClosed)
}

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool abstracts the pgx connection pool to make testing easier.
type Pool interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

// Source hands out the process-wide pool. *Cache is the production
// implementation; Static wraps an already-open pool.
type Source interface {
	Acquire(ctx context.Context) (Pool, error)
}

// Static adapts an already-established pool to the Source interface.
func Static(pool Pool) Source {
	return staticSource{pool: pool}
}

type staticSource struct {
	pool Pool
}

func (s staticSource) Acquire(context.Context) (Pool, error) {
	if s.pool == nil {
		return nil, ErrConnectionFailed
	}
	return s.pool, nil
}

// Connect initialises a PostgreSQL connection pool using the provided database
// URL and verifies it is reachable.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

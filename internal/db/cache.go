package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sohansahooo/vidshort/internal/logging"
)

// ErrConnectionFailed is returned to every caller waiting on a connection
// attempt that did not succeed. The cache is left empty so the next Acquire
// starts a fresh attempt.
var ErrConnectionFailed = errors.New("database connection failed")

// DefaultConnectTimeout bounds a single connection attempt.
const DefaultConnectTimeout = 10 * time.Second

const connectKey = "connect"

// Connector establishes a new physical connection pool.
type Connector func(ctx context.Context) (Pool, error)

// PostgresConnector returns a Connector that dials the provided database URL.
func PostgresConnector(databaseURL string) Connector {
	return func(ctx context.Context) (Pool, error) {
		pool, err := Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return pool, nil
	}
}

// Cache lazily establishes a single database pool and shares it with every
// caller for the lifetime of the process. Concurrent callers that arrive
// before the pool exists wait on the same attempt.
type Cache struct {
	connect Connector
	timeout time.Duration

	mu     sync.RWMutex
	handle Pool
	flight singleflight.Group
}

// NewCache constructs a Cache around connect. A non-positive timeout falls back
// to DefaultConnectTimeout.
func NewCache(connect Connector, timeout time.Duration) *Cache {
	if connect == nil {
		panic("db: connector must not be nil")
	}
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	return &Cache{connect: connect, timeout: timeout}
}

// Acquire returns the cached pool, establishing it first if necessary. If ctx
// is done before the shared attempt finishes, Acquire returns ctx.Err() while
// the attempt carries on for the remaining waiters.
func (c *Cache) Acquire(ctx context.Context) (Pool, error) {
	if handle := c.cached(); handle != nil {
		return handle, nil
	}

	attempt := c.flight.DoChan(connectKey, func() (any, error) {
		return c.establish(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-attempt:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Pool), nil
	}
}

// Reset drops and closes the cached pool. It is intended for shutdown and tests;
// nothing in the request path calls it.
func (c *Cache) Reset() {
	c.mu.Lock()
	handle := c.handle
	c.handle = nil
	c.mu.Unlock()

	if handle != nil {
		handle.Close()
	}
}

func (c *Cache) cached() Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handle
}

func (c *Cache) establish(ctx context.Context) (Pool, error) {
	// A previous flight may have finished between the fast-path check and
	// joining this one.
	if handle := c.cached(); handle != nil {
		return handle, nil
	}

	ctx, span := logging.StartSpan(ctx, "db.connect")
	defer span.End()

	connectCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	handle, err := c.connect(connectCtx)
	if err != nil {
		logging.FromContext(ctx).Error("database connection attempt failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if handle == nil {
		return nil, ErrConnectionFailed
	}

	c.mu.Lock()
	c.handle = handle
	c.mu.Unlock()

	return handle, nil
}

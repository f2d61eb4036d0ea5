package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sohansahooo/vidshort/internal/db"
)

const readinessTimeout = 2 * time.Second

// HealthHandler responds with service health information.
type HealthHandler struct {
	Database db.Source
}

// Handle implements GET /healthz. It never touches the database.
func (HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready implements GET /readyz by acquiring and pinging a database connection.
func (h HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if h.Database == nil {
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "not configured"})
		return
	}

	if err := ping(ctx, h.Database); err != nil {
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": msgDatabaseUnavailable})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

func ping(ctx context.Context, source db.Source) error {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	pool, err := source.Acquire(ctx)
	if err != nil {
		return err
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return conn.Ping(ctx)
}

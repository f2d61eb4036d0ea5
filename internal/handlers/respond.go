package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sohansahooo/vidshort/internal/db"
	"github.com/sohansahooo/vidshort/internal/logging"
)

const msgDatabaseUnavailable = "Database connection failed"

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	logger := logging.FromContext(ctx)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("encode response body", slog.Int("status", status), slog.Any("error", err))
		return
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", slog.Int("status", status), slog.Any("response", payload))
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", slog.Int("status", status), slog.Any("response", payload))
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, errorResponse{Error: message})
}

// respondInternal logs err and answers with a generic 500. Database
// connectivity problems get their own message; nothing else leaks.
func respondInternal(ctx context.Context, w http.ResponseWriter, err error, message string) {
	logging.FromContext(ctx).Error(message, slog.Any("error", err))
	if errors.Is(err, db.ErrConnectionFailed) {
		message = msgDatabaseUnavailable
	}
	respondError(ctx, w, http.StatusInternalServerError, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const maxBody = 1 << 20
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	return decoder.Decode(dst)
}

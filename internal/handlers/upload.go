package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sohansahooo/vidshort/internal/auth"
	"github.com/sohansahooo/vidshort/internal/logging"
	"github.com/sohansahooo/vidshort/internal/storage"
)

// MaxUploadSize bounds server-side multipart uploads.
const MaxUploadSize = 200 << 20

const msgUploadAuthFailed = "Authentication failed"

// UploadHandler issues media provider credentials and accepts server-side uploads.
type UploadHandler struct {
	Signer  UploadSigner
	Storage ObjectStore
}

// Auth handles GET /api/upload-auth.
func (h UploadHandler) Auth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if h.Signer == nil {
		respondInternal(ctx, w, errors.New("upload signer not configured"), msgUploadAuthFailed)
		return
	}

	params, err := h.Signer.Sign()
	if err != nil {
		respondInternal(ctx, w, err, msgUploadAuthFailed)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(ctx, w, http.StatusOK, params)
}

// Upload handles POST /api/upload with a multipart "file" field.
func (h UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if h.Storage == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "Upload storage unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(ctx, w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		logger.Warn("invalid upload form", slog.Any("error", err))
		respondError(ctx, w, http.StatusBadRequest, "A file is required")
		return
	}
	defer file.Close()

	key := storage.ObjectKey(identity.ID, header.Filename)
	url, err := h.Storage.Save(ctx, key, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondInternal(ctx, w, err, "Upload failed")
		return
	}

	logger.Info("upload stored", slog.String("key", key), slog.Int64("size", header.Size))
	respondJSON(ctx, w, http.StatusCreated, uploadResponse{Key: key, URL: url})
}

// Presign handles POST /api/upload/presign, returning a presigned PUT for the
// caller to upload directly to the bucket.
func (h UploadHandler) Presign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if h.Storage == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "Upload storage unavailable")
		return
	}

	var req presignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		respondError(ctx, w, http.StatusBadRequest, "filename is required")
		return
	}

	upload, err := h.Storage.PresignPut(ctx, storage.ObjectKey(identity.ID, req.Filename), req.ContentType, storage.DefaultPresignExpiry)
	if err != nil {
		respondInternal(ctx, w, err, "Upload failed")
		return
	}

	respondJSON(ctx, w, http.StatusOK, upload)
}

type uploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type presignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sohansahooo/vidshort/internal/auth"
	"github.com/sohansahooo/vidshort/internal/logging"
	"github.com/sohansahooo/vidshort/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// VideoHandler serves the public listing and video creation.
type VideoHandler struct {
	Videos  VideoStore
	Feed    VideoFeed
	NowFunc func() time.Time
}

// Handle routes /api/videos by method.
func (h VideoHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// List handles GET /api/videos, newest first.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Feed == nil {
		logging.FromContext(ctx).Error("video feed unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "Failed to fetch videos")
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(ctx, w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxListLimit)
	}

	videos, err := h.Feed.ListRecent(ctx, limit)
	if err != nil {
		respondInternal(ctx, w, err, "Failed to fetch videos")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondJSON(ctx, w, http.StatusOK, videos)
}

// Create handles POST /api/videos. The caller must carry a session.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if h.Videos == nil {
		logger.Error("video store unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "Failed to create video")
		return
	}

	var req createVideoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid video payload", slog.Any("error", err))
		respondError(ctx, w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	video := req.toVideo()
	video.ID = uuid.NewString()
	video.OwnerID = identity.ID
	now := h.now()
	video.CreatedAt = now
	video.UpdatedAt = now

	if err := video.Validate(); err != nil {
		respondError(ctx, w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), models.ErrInvalidVideo.Error()+": "))
		return
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondInternal(ctx, w, err, "Failed to create video")
		return
	}

	if h.Feed != nil {
		h.Feed.Invalidate()
	}

	logger.Info("video created", slog.String("videoId", video.ID), slog.String("ownerId", identity.ID))
	respondJSON(ctx, w, http.StatusCreated, video)
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type createVideoRequest struct {
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	VideoURL       string                 `json:"videoUrl"`
	ThumbnailURL   string                 `json:"thumbnailUrl"`
	Controls       *bool                  `json:"controls"`
	Transformation *models.Transformation `json:"transformation"`
}

func (req createVideoRequest) toVideo() models.Video {
	video := models.NewVideo(
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Description),
		strings.TrimSpace(req.VideoURL),
		strings.TrimSpace(req.ThumbnailURL),
	)
	if req.Controls != nil {
		video.ControlsVisible = *req.Controls
	}
	if req.Transformation != nil {
		video.Transformation = *req.Transformation
		video.ApplyDefaults()
	}
	return video
}

package repositories

import (
	"context"

	"github.com/sohansahooo/vidshort/internal/models"
)

// VideoRepository exposes data access for video records.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	ListRecent(ctx context.Context, limit int) ([]models.Video, error)
}

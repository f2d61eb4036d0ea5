package repositories

import (
	"context"

	"github.com/sohansahooo/vidshort/internal/models"
)

// UserRepository defines the data access contract for users. Callers pass
// records that have already been prepared for persistence.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

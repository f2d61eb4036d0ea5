package handlers

import (
	"context"
	"io"
	"time"

	"github.com/sohansahooo/vidshort/internal/media"
	"github.com/sohansahooo/vidshort/internal/models"
	"github.com/sohansahooo/vidshort/internal/storage"
)

// UserStore captures the persistence operations required by registration.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
}

// Authenticator verifies email/password credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (models.Identity, error)
}

// SessionManager issues, refreshes and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, identity models.Identity) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, models.Identity, error)
	Revoke(ctx context.Context, refreshToken string)
	RevokeAccess(accessToken string)
}

// VideoStore persists new video records.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
}

// VideoFeed serves the public listing and can be told it is stale.
type VideoFeed interface {
	ListRecent(ctx context.Context, limit int) ([]models.Video, error)
	Invalidate()
}

// UploadSigner issues credentials for direct uploads to the media provider.
type UploadSigner interface {
	Sign() (media.UploadAuth, error)
}

// ObjectStore stores server-side uploads and presigns direct ones.
type ObjectStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (storage.PresignedUpload, error)
}

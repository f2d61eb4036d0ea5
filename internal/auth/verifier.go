package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/sohansahooo/vidshort/internal/db"
	"github.com/sohansahooo/vidshort/internal/logging"
	"github.com/sohansahooo/vidshort/internal/models"
	"github.com/sohansahooo/vidshort/internal/repositories"
)

var (
	// ErrLoginFailed is the only credential error surfaced to callers.
	ErrLoginFailed = errors.New("login failed")

	// ErrMissingCredentials, ErrUserNotFound and ErrInvalidPassword are logged as
	// the reason behind an ErrLoginFailed and never returned from Authenticate.
	ErrMissingCredentials = errors.New("missing credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("invalid password")
)

// UserLookup finds users by their exact email address.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// Verifier checks email/password pairs against stored users.
type Verifier struct {
	users UserLookup
}

// NewVerifier constructs a Verifier backed by users.
func NewVerifier(users UserLookup) *Verifier {
	if users == nil {
		panic("auth: user lookup must not be nil")
	}
	return &Verifier{users: users}
}

// Authenticate returns the identity matching email and password. Credential
// failures are collapsed into ErrLoginFailed; a database that cannot be
// reached yields an error wrapping db.ErrConnectionFailed instead.
func (v *Verifier) Authenticate(ctx context.Context, email, password string) (models.Identity, error) {
	ctx, span := logging.StartSpan(ctx, "auth.authenticate")
	defer span.End()

	identity, err := v.verify(ctx, email, password)
	if err == nil {
		return identity, nil
	}

	logger := logging.FromContext(ctx)
	if errors.Is(err, db.ErrConnectionFailed) {
		logger.Error("credential verification unavailable", slog.Any("error", err))
		return models.Identity{}, err
	}

	logger.Warn("login failed", slog.String("reason", err.Error()))
	return models.Identity{}, ErrLoginFailed
}

func (v *Verifier) verify(ctx context.Context, email, password string) (models.Identity, error) {
	if email == "" || password == "" {
		return models.Identity{}, ErrMissingCredentials
	}

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Burn a comparison so unknown emails cost the same as bad passwords.
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return models.Identity{}, ErrUserNotFound
		}
		return models.Identity{}, err
	}

	if err := ComparePassword(user.Password, password); err != nil {
		return models.Identity{}, ErrInvalidPassword
	}

	return user.Identity(), nil
}

var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("vidshort-timing-placeholder"), PasswordCost)
	if err != nil {
		panic(err)
	}
	return hash
})

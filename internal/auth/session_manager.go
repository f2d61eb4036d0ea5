package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sohansahooo/vidshort/internal/models"
	"github.com/sohansahooo/vidshort/internal/repositories"
)

var (
	// ErrSessionNotFound indicates the provided refresh token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrAccessTokenRevoked indicates the access token was revoked by a logout.
	ErrAccessTokenRevoked = errors.New("access token revoked")
)

// SessionStore persists issued refresh tokens so they can survive process
// restarts. Lookups of unknown tokens return repositories.ErrNotFound.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Find(ctx context.Context, refreshToken string) (models.Session, error)
	Delete(ctx context.Context, refreshToken string) error
}

// Manager issues signed access tokens alongside opaque refresh tokens kept in
// a SessionStore.
type Manager struct {
	tokens     *TokenIssuer
	refreshTTL time.Duration
	store      SessionStore
	now        func() time.Time

	// revoked maps access token ids to their expiry. It is process-local.
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewManager constructs a Manager that signs access tokens with tokens and
// keeps refresh sessions alive for refreshTTL.
func NewManager(tokens *TokenIssuer, refreshTTL time.Duration, store SessionStore) *Manager {
	if tokens == nil {
		panic("auth: token issuer must not be nil")
	}
	if store == nil {
		panic("auth: session store must not be nil")
	}
	return &Manager{
		tokens:     tokens,
		refreshTTL: refreshTTL,
		store:      store,
		now:        time.Now,
		revoked:    make(map[string]time.Time),
	}
}

// Issue creates a new pair of access and refresh tokens for identity.
func (m *Manager) Issue(ctx context.Context, identity models.Identity) (models.SessionTokens, error) {
	if identity.ID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	accessToken, accessExpiresAt, err := m.tokens.Sign(identity)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}

	tokens := models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: m.now().UTC().Add(m.refreshTTL),
	}

	if err := m.store.Save(ctx, models.Session{
		RefreshToken: refreshToken,
		UserID:       identity.ID,
		Email:        identity.Email,
		ExpiresAt:    tokens.RefreshExpiresAt,
	}); err != nil {
		return models.SessionTokens{}, fmt.Errorf("save session: %w", err)
	}

	return tokens, nil
}

// Refresh exchanges a refresh token for a new session token pair. The old
// refresh token is consumed.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, models.Identity, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, models.Identity{}, ErrSessionNotFound
	}

	session, err := m.store.Find(ctx, refreshToken)
	if err != nil {
		return models.SessionTokens{}, models.Identity{}, mapStoreErr(err)
	}

	if m.now().UTC().After(session.ExpiresAt) {
		_ = m.store.Delete(ctx, refreshToken)
		return models.SessionTokens{}, models.Identity{}, ErrRefreshTokenExpired
	}

	if err := m.store.Delete(ctx, refreshToken); err != nil {
		return models.SessionTokens{}, models.Identity{}, mapStoreErr(err)
	}

	identity := models.Identity{ID: session.UserID, Email: session.Email}
	tokens, err := m.Issue(ctx, identity)
	if err != nil {
		return models.SessionTokens{}, models.Identity{}, err
	}
	return tokens, identity, nil
}

// Revoke removes the provided refresh token from the active session store.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	_ = m.store.Delete(ctx, refreshToken)
}

// RevokeAccess denies accessToken until the moment it would have expired.
// Tokens that fail verification are ignored.
func (m *Manager) RevokeAccess(accessToken string) {
	claims, err := m.tokens.Parse(accessToken)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, expiresAt := range m.revoked {
		if now.After(expiresAt) {
			delete(m.revoked, id)
		}
	}
	m.revoked[claims.ID] = claims.ExpiresAt.Time
}

// Verify validates an access token and returns its claims.
func (m *Manager) Verify(accessToken string) (*Claims, error) {
	claims, err := m.tokens.Parse(accessToken)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	_, revoked := m.revoked[claims.ID]
	m.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrAccessTokenRevoked)
	}
	return claims, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

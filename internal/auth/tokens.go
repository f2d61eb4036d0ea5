package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sohansahooo/vidshort/internal/models"
)

// DefaultIssuer is the iss claim stamped on every access token.
const DefaultIssuer = "vidshort"

var (
	// ErrMissingSecret indicates the signing secret was not configured.
	ErrMissingSecret = errors.New("auth: session signing secret is required")
	// ErrInvalidToken indicates an access token failed signature, expiry or issuer checks.
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims are the JWT claims carried by an access token. Subject holds the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the authenticated identity encoded in the claims.
func (c *Claims) Identity() models.Identity {
	if c == nil {
		return models.Identity{}
	}
	return models.Identity{ID: c.Subject, Email: c.Email}
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer using secret for HMAC signing.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: DefaultIssuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Sign issues an access token for identity and returns its expiry.
func (t *TokenIssuer) Sign(identity models.Identity) (string, time.Time, error) {
	if identity.ID == "" {
		return "", time.Time{}, errors.New("auth: identity id must be provided")
	}

	now := t.now().UTC()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies the token and returns its claims.
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

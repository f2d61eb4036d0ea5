// Package media signs client-side uploads to the hosted media provider.
package media

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // the provider's upload signature is defined as HMAC-SHA1
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sohansahooo/vidshort/internal/config"
)

const (
	// DefaultExpiry is how long an upload signature stays valid.
	DefaultExpiry = 30 * time.Minute
	// MaxExpiry is the longest validity the provider accepts.
	MaxExpiry = time.Hour
)

// ErrMissingPrivateKey indicates the provider private key was not configured.
var ErrMissingPrivateKey = errors.New("media: private key is not configured")

// UploadAuth is the token/expire/signature triple a client presents to the
// media provider together with the public key.
type UploadAuth struct {
	Token       string `json:"token"`
	Expire      int64  `json:"expire"`
	Signature   string `json:"signature"`
	PublicKey   string `json:"publicKey"`
	URLEndpoint string `json:"urlEndpoint,omitempty"`
}

// Signer produces short-lived upload credentials.
type Signer struct {
	publicKey   string
	privateKey  []byte
	urlEndpoint string
	expiry      time.Duration

	now      func() time.Time
	newToken func() string
}

// NewSigner constructs a Signer from the media provider configuration.
func NewSigner(cfg config.MediaConfig) *Signer {
	return &Signer{
		publicKey:   cfg.PublicKey,
		privateKey:  []byte(cfg.PrivateKey),
		urlEndpoint: cfg.URLEndpoint,
		expiry:      DefaultExpiry,
		now:         time.Now,
		newToken:    uuid.NewString,
	}
}

// Sign returns fresh upload credentials with a random token expiring after
// DefaultExpiry.
func (s *Signer) Sign() (UploadAuth, error) {
	return s.SignToken(s.newToken(), s.now().Add(s.expiry).Unix())
}

// SignToken signs the provided token and expiry (unix seconds). Expiries
// further out than MaxExpiry are clamped.
func (s *Signer) SignToken(token string, expire int64) (UploadAuth, error) {
	if len(s.privateKey) == 0 {
		return UploadAuth{}, ErrMissingPrivateKey
	}
	if token == "" {
		return UploadAuth{}, errors.New("media: token must not be empty")
	}
	if limit := s.now().Add(MaxExpiry).Unix(); expire > limit {
		expire = limit
	}

	mac := hmac.New(sha1.New, s.privateKey)
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))

	return UploadAuth{
		Token:       token,
		Expire:      expire,
		Signature:   hex.EncodeToString(mac.Sum(nil)),
		PublicKey:   s.publicKey,
		URLEndpoint: s.urlEndpoint,
	}, nil
}

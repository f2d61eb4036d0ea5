package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sohansahooo/vidshort/internal/models"
)

// PasswordCost is the bcrypt cost factor applied to every stored password.
const PasswordCost = bcrypt.DefaultCost

// ErrEmptyPassword indicates a password change was requested without a password.
var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword generates the bcrypt hash for password. It errors if the
// password is longer than 72 bytes.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword returns an error if password does not resolve to hash.
func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// PrepareUserForPersistence readies user for a write. When passwordChanged is
// set the Password field is treated as plaintext and replaced with its hash;
// otherwise it is left untouched so an existing hash is never hashed again.
func PrepareUserForPersistence(user models.User, passwordChanged bool) (models.User, error) {
	if passwordChanged {
		if user.Password == "" {
			return models.User{}, ErrEmptyPassword
		}
		hash, err := HashPassword(user.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hash
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	return user, nil
}

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

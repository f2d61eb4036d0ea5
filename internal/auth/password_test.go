package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sohansahooo/vidshort/internal/models"
)

func TestPrepareUserHashesChangedPassword(t *testing.T) {
	t.Parallel()

	user, err := PrepareUserForPersistence(models.User{Email: "a@example.com", Password: "hunter22"}, true)
	require.NoError(t, err)

	assert.NotEqual(t, "hunter22", user.Password)
	require.NoError(t, ComparePassword(user.Password, "hunter22"))
	cost, err := bcrypt.Cost([]byte(user.Password))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestPrepareUserLeavesUnchangedPasswordAlone(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	user, err := PrepareUserForPersistence(models.User{
		Email:     "b@example.com",
		Password:  hash,
		CreatedAt: created,
	}, false)
	require.NoError(t, err)

	assert.Equal(t, hash, user.Password)
	assert.Equal(t, created, user.CreatedAt)
	assert.True(t, user.UpdatedAt.After(created))
	require.NoError(t, ComparePassword(user.Password, "hunter22"))
}

func TestPrepareUserRejectsEmptyPassword(t *testing.T) {
	t.Parallel()

	_, err := PrepareUserForPersistence(models.User{Email: "c@example.com"}, true)
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestHashPasswordSalts(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("same")
	require.NoError(t, err)
	second, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

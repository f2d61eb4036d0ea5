package models

import "time"

// User represents an account within the vidshort platform. Password always
// holds a bcrypt hash once the record has been prepared for persistence.
type User struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity is the minimal view of an authenticated user. It never carries the
// password hash.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Identity returns the public identity of the user.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email}
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// Session is a refresh token issued to a user.
type Session struct {
	RefreshToken string
	UserID       string
	Email        string
	ExpiresAt    time.Time
}

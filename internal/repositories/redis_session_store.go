package repositories

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/sohansahooo/vidshort/internal/models"
)

const sessionKeyPrefix = "session:"

// NewRedisClient dials a single Redis node and verifies it answers PING.
func NewRedisClient(ctx context.Context, addr string, dbIndex int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIndex,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisSessionStore keeps refresh sessions in Redis hashes that expire
// together with the refresh token.
type RedisSessionStore struct {
	rdb redis.Cmdable
}

// NewRedisSessionStore constructs a session store backed by rdb.
func NewRedisSessionStore(rdb redis.Cmdable) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

// Save stores the session and schedules its expiry.
func (s *RedisSessionStore) Save(ctx context.Context, session models.Session) error {
	key := sessionKeyPrefix + session.RefreshToken
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"user_id", session.UserID,
			"email", session.Email,
			"expires_at", session.ExpiresAt.UTC().Format(time.RFC3339Nano),
		)
		pipe.ExpireAt(ctx, key, session.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Find loads a session by its refresh token.
func (s *RedisSessionStore) Find(ctx context.Context, refreshToken string) (models.Session, error) {
	fields, err := s.rdb.HGetAll(ctx, sessionKeyPrefix+refreshToken).Result()
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}
	if len(fields) == 0 {
		return models.Session{}, ErrNotFound
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, fields["expires_at"])
	if err != nil {
		return models.Session{}, fmt.Errorf("parse session expiry: %w", err)
	}

	return models.Session{
		RefreshToken: refreshToken,
		UserID:       fields["user_id"],
		Email:        fields["email"],
		ExpiresAt:    expiresAt.UTC(),
	}, nil
}

// Delete removes a session by its refresh token.
func (s *RedisSessionStore) Delete(ctx context.Context, refreshToken string) error {
	removed, err := s.rdb.Del(ctx, sessionKeyPrefix+refreshToken).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sohansahooo/vidshort/internal/config"
)

func TestKeyedRateLimiterBurstAndRefill(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	limiter := NewRateLimiter(config.RateLimitConfig{Requests: 1, Window: time.Second, Burst: 2}, time.Minute)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("login:10.0.0.1"))
	assert.True(t, limiter.Allow("login:10.0.0.1"))
	assert.False(t, limiter.Allow("login:10.0.0.1"))
	assert.True(t, limiter.Allow("login:10.0.0.2"), "keys are limited independently")

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("login:10.0.0.1"))
}

func TestKeyedRateLimiterForgetsIdleKeys(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	limiter := NewRateLimiter(config.RateLimitConfig{}, time.Minute)
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	limiter.Allow("")
	assert.Equal(t, 2, limiter.size())

	now = now.Add(2 * time.Minute)
	limiter.Allow("b")
	assert.Equal(t, 1, limiter.size())
}

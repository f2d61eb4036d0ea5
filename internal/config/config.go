package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingDatabaseURL indicates no database connection string was configured.
var ErrMissingDatabaseURL = errors.New("config: database connection string is required (set VIDSHORT_DATABASE_URL)")

// Session store backends.
const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
	SessionStoreMemory   = "memory"
)

// Config captures the runtime configuration for the vidshort service.
type Config struct {
	AppPort         int
	DatabaseURL     string
	ConnectTimeout  time.Duration
	LogLevel        string
	ListingCacheTTL time.Duration
	SecureCookies   bool
	TrustedProxies  []netip.Prefix

	Session     SessionConfig
	Media       MediaConfig
	ObjectStore ObjectStoreConfig
	RateLimit   RateLimitConfig
}

// SessionConfig controls token signing and refresh session persistence.
type SessionConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Store      string
	RedisAddr  string
	RedisDB    int
}

// MediaConfig holds the hosted media provider credentials used to sign
// client-side uploads.
type MediaConfig struct {
	PublicKey   string
	PrivateKey  string
	URLEndpoint string
}

// ObjectStoreConfig describes the S3-compatible bucket used for server-side uploads.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// RateLimitConfig bounds how often a single client may hit the auth endpoints.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; variables already set in
// the environment take precedence over it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	cfg := Config{
		AppPort:         getInt("VIDSHORT_PORT", 8080),
		DatabaseURL:     getString("VIDSHORT_DATABASE_URL", os.Getenv("DATABASE_URL")),
		ConnectTimeout:  getDuration("VIDSHORT_CONNECT_TIMEOUT", 10*time.Second),
		LogLevel:        getString("VIDSHORT_LOG_LEVEL", "info"),
		ListingCacheTTL: getDuration("VIDSHORT_LISTING_CACHE_TTL", 30*time.Second),
		SecureCookies:   getBool("VIDSHORT_SECURE_COOKIES", false),
		Session: SessionConfig{
			Secret:     getString("VIDSHORT_SESSION_SECRET", ""),
			AccessTTL:  getDuration("VIDSHORT_ACCESS_TOKEN_TTL", 30*time.Minute),
			RefreshTTL: getDuration("VIDSHORT_REFRESH_TOKEN_TTL", 30*24*time.Hour),
			Store:      strings.ToLower(getString("VIDSHORT_SESSION_STORE", SessionStorePostgres)),
			RedisAddr:  getString("VIDSHORT_REDIS_ADDR", "localhost:6379"),
			RedisDB:    getInt("VIDSHORT_REDIS_DB", 0),
		},
		Media: MediaConfig{
			PublicKey:   getString("VIDSHORT_MEDIA_PUBLIC_KEY", ""),
			PrivateKey:  getString("VIDSHORT_MEDIA_PRIVATE_KEY", ""),
			URLEndpoint: getString("VIDSHORT_MEDIA_URL_ENDPOINT", ""),
		},
		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("VIDSHORT_S3_BUCKET", ""),
			Region:        getString("VIDSHORT_S3_REGION", "us-east-1"),
			Endpoint:      getString("VIDSHORT_S3_ENDPOINT", ""),
			PublicBaseURL: getString("VIDSHORT_S3_PUBLIC_BASE_URL", ""),
		},
		RateLimit: RateLimitConfig{
			Requests: getInt("VIDSHORT_AUTH_RATE_LIMIT", 10),
			Window:   getDuration("VIDSHORT_AUTH_RATE_WINDOW", time.Minute),
			Burst:    getInt("VIDSHORT_AUTH_RATE_BURST", 5),
		},
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, ErrMissingDatabaseURL
	}

	proxies, err := parsePrefixes(getString("VIDSHORT_TRUSTED_PROXIES", ""))
	if err != nil {
		return Config{}, fmt.Errorf("config: VIDSHORT_TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	switch cfg.Session.Store {
	case SessionStorePostgres, SessionStoreRedis, SessionStoreMemory:
	default:
		return Config{}, errors.New("config: VIDSHORT_SESSION_STORE must be one of postgres, redis, memory")
	}

	return cfg, nil
}

// parsePrefixes reads a comma-separated list of IPs and CIDR ranges. A bare
// IP is treated as a single-address prefix.
func parsePrefixes(raw string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			prefix, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

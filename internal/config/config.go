package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8000"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline applied by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	APIToken string // shared bearer secret required on the bookmarks API

	DatabaseURL string // sqlite path/DSN, or libsql:// URL for a remote database
	SeedFile    string // optional YAML file used to seed an empty bookmarks table

	CORSOrigins  []string // allowed Origin values, empty => "*"
	AllowedCIDRS []string // optional, restrict /healthz and /readyz to these IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	RateLimitBurst  int // per-IP burst on the bookmarks API, 0 disables the limiter
	RateLimitPerMin int // per-IP refill rate

	// Redis read cache (disabled when RedisAddr is empty)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting at startup
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	CacheTTL            time.Duration
}

// CacheEnabled reports whether a Redis cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		ListenPort:      getenv("BOOKMARKD_LISTEN_PORT", ":8000"),
		ShutdownTimeout: mustDuration("BOOKMARKD_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("BOOKMARKD_REQUEST_TIMEOUT", 5*time.Second),

		LogLevel:  getenv("BOOKMARKD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BOOKMARKD_PRETTY_LOG", false),

		APIToken: os.Getenv("BOOKMARKD_API_TOKEN"),

		DatabaseURL: getenv("BOOKMARKD_DATABASE_URL", "file:bookmarks.db"),
		SeedFile:    getenv("BOOKMARKD_SEED_FILE", ""),

		CORSOrigins:  splitAndTrim(getenv("BOOKMARKD_CORS_ORIGINS", "")),
		AllowedCIDRS: splitAndTrim(getenv("BOOKMARKD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("BOOKMARKD_TRUST_PROXY", false),

		RateLimitBurst:  getenvInt("BOOKMARKD_RATE_LIMIT_BURST", 0),
		RateLimitPerMin: getenvInt("BOOKMARKD_RATE_LIMIT_PER_MIN", 60),

		RedisAddr:           getenv("BOOKMARKD_REDIS_ADDR", ""),
		RedisUser:           getenv("BOOKMARKD_REDIS_USERNAME", ""),
		RedisPassword:       getenv("BOOKMARKD_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("BOOKMARKD_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		CacheTTL:            mustDuration("BOOKMARKD_CACHE_TTL", 10*time.Minute),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIToken == "" {
		return fmt.Errorf("required environment variable BOOKMARKD_API_TOKEN is not set")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("BOOKMARKD_DATABASE_URL must not be empty")
	}
	if c.RateLimitBurst < 0 {
		return fmt.Errorf("BOOKMARKD_RATE_LIMIT_BURST must be >= 0, got %d", c.RateLimitBurst)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	cp.APIToken = "***REDACTED***"
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if i := strings.Index(cp.DatabaseURL, "authToken="); i >= 0 {
		cp.DatabaseURL = cp.DatabaseURL[:i] + "authToken=***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// ErrMissingJWTSecret is returned when JWT_SECRET is not configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	DataDir     string
	DBDriver    string
	DatabaseDSN string
	ResetDB     bool
	SeedDemo    bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	AMQPURL string

	JWTSecret     string
	TokenTTL      time.Duration
	BcryptCost    int
	ResetTokenTTL time.Duration

	// AuthRateLimit is the number of requests per minute a single client may
	// send to /api/auth. Zero disables the limiter.
	AuthRateLimit int
	// TrustProxy takes the client IP from X-Forwarded-For. Enable it only
	// behind a reverse proxy that overwrites the header.
	TrustProxy bool

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := &envReader{}
	cfg := &Config{
		ServerPort:    env.str("SERVER_PORT", "8080"),
		DataDir:       env.str("DATA_DIR", "./data"),
		DBDriver:      env.str("DB_DRIVER", "sqlite"),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		ResetDB:       env.boolean("RESET_DB", false),
		SeedDemo:      env.boolean("SEED_DEMO", false),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisDB:       env.integer("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		AMQPURL:       os.Getenv("AMQP_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      env.duration("TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:    env.integer("BCRYPT_COST", 10),
		ResetTokenTTL: env.duration("RESET_TOKEN_TTL", 30*time.Minute),
		AuthRateLimit: env.integer("RATE_LIMIT_AUTH", 20),
		TrustProxy:    env.boolean("TRUST_PROXY", false),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
	}
	if env.err != nil {
		return nil, env.err
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.ResetTokenTTL <= 0 {
		return nil, fmt.Errorf("RESET_TOKEN_TTL must be positive, got %s", cfg.ResetTokenTTL)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cfg.BcryptCost)
	}
	if cfg.AuthRateLimit < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_AUTH must not be negative, got %d", cfg.AuthRateLimit)
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = filepath.Join(cfg.DataDir, "workshop.db")
		}
	case "mysql", "postgres":
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for driver %q", cfg.DBDriver)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// envReader reads typed variables and keeps the first malformed one, so a
// typo fails startup instead of silently falling back to the default.
type envReader struct {
	err error
}

func (r *envReader) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (r *envReader) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return parsed
}

func (r *envReader) boolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return parsed
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return parsed
}

func (r *envReader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

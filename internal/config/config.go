package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig is the server configuration, loaded from the environment.
type AppConfig struct {
	Addr        string
	RedisURL    string
	DatabaseURL string

	JWTSecret      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	// Optional directory of YAML files overriding the embedded user-facing
	// messages.
	MessagesDir string
}

// Load reads the environment. REDIS_URL and JWT_SECRET are required;
// everything else has a default.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Addr:           ":8080",
		AccessTokenTTL: time.Hour,
	}

	if v := strings.TrimSpace(os.Getenv("ADDR")); v != "" {
		cfg.Addr = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	cfg.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("ACCESS_TOKEN_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, errors.New("ACCESS_TOKEN_TTL must be a positive duration")
		}
		cfg.AccessTokenTTL = d
	}

	if v := strings.TrimSpace(os.Getenv("BCRYPT_COST")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, errors.New("BCRYPT_COST must be a non-negative integer")
		}
		cfg.BcryptCost = n
	}

	return cfg, nil
}

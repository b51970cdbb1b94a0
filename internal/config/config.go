package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"pretty"`

	// RedisURL enables the Redis event sink. Empty means events are only logged.
	RedisURL string `env:"REDIS_URL"`

	JWTSecret  string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-random-string"`
	JWTExpiry  time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"6"`

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Bootstrap admin account. The hash is produced by cmd/hash-password.
	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	// RandomSeed fixes question sampling and shuffling. 0 seeds from crypto/rand.
	RandomSeed int64 `env:"RANDOM_SEED" envDefault:"0"`

	EventQueueSize    int           `env:"EVENT_QUEUE_SIZE" envDefault:"1024"`
	EventBatchSize    int           `env:"EVENT_BATCH_SIZE" envDefault:"50"`
	EventBatchTimeout time.Duration `env:"EVENT_BATCH_TIMEOUT" envDefault:"2s"`

	// LoginRateLimit is the number of login attempts per IP per minute.
	LoginRateLimit int `env:"LOGIN_RATE_LIMIT" envDefault:"30"`
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AllowedOrigins = trimOrigins(cfg.AllowedOrigins)
	return &cfg, nil
}

// trimOrigins drops blank entries. Returns nil (allow-all) if nothing remains.
func trimOrigins(raw []string) []string {
	var origins []string
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

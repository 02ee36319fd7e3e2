package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// AppURL is the externally reachable base used in email links.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:8080" validate:"required,url"`

	JWTSecret string `env:"JWT_SECRET,required" validate:"required,min=32"`

	// 32-byte hex-encoded keys. TOKEN_SIGNING_KEY signs email tokens,
	// ENCRYPTION_KEY encrypts stored API credentials at rest.
	TokenSigningKey string `env:"TOKEN_SIGNING_KEY,required" validate:"required,hexadecimal,len=64"`
	EncryptionKey   string `env:"ENCRYPTION_KEY,required"    validate:"required,hexadecimal,len=64"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	RedditAPIURL string `env:"REDDIT_API_URL" envDefault:"https://www.reddit.com" validate:"required,url"`
	PollLimit    int    `env:"POLL_LIMIT" envDefault:"50" validate:"min=1,max=100"`

	PollCron   string `env:"POLL_CRON"   envDefault:"*/5 * * * *" validate:"required"`
	DigestCron string `env:"DIGEST_CRON" envDefault:"*/15 * * * *" validate:"required"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SigningKey returns the decoded email-token signing key.
func (c *Config) SigningKey() ([]byte, error) {
	key, err := hex.DecodeString(c.TokenSigningKey)
	if err != nil {
		return nil, fmt.Errorf("decode TOKEN_SIGNING_KEY: %w", err)
	}
	return key, nil
}

// CryptoKey returns the decoded field-encryption key.
func (c *Config) CryptoKey() ([]byte, error) {
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decode ENCRYPTION_KEY: %w", err)
	}
	return key, nil
}

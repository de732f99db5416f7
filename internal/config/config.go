// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config is the process-wide, read-only configuration, populated once at
// startup. An absent HF_API_TOKEN is not a startup failure: the image
// generation tool reports it as a business error at invocation time.
type Config struct {
	// HFAPIToken is the Hugging Face inference credential. ENV: HF_API_TOKEN
	HFAPIToken string `env:"HF_API_TOKEN"`
	// ModelURL is the inference endpoint. ENV: TOOLBELT_MODEL_URL
	ModelURL string `env:"TOOLBELT_MODEL_URL,default=https://api-inference.huggingface.co/models/black-forest-labs/FLUX.1-schnell"`
	// HTTPTimeout bounds a single inference call. ENV: TOOLBELT_HTTP_TIMEOUT
	HTTPTimeout time.Duration `env:"TOOLBELT_HTTP_TIMEOUT,default=60s"`
	// LogLevel is one of debug, info, warn, error. ENV: TOOLBELT_LOG_LEVEL
	LogLevel string `env:"TOOLBELT_LOG_LEVEL,default=info"`
}

// FromEnv populates a Config via envdecode. Defaults come from struct tags.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the configured level string onto a slog.Level. Unknown
// values fall back to info.
func (c Config) SlogLevel() slog.Level {
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

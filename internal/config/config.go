// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all service settings.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL enables the PostgreSQL store; empty falls back to the
	// in-memory store. RedisURL enables the market snapshot cache.
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// Provider credentials. A missing key disables that provider; the
	// calendar provider always runs.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	TavilyAPIKey    string `env:"TAVILY_API_KEY"`
	ClaudeModel     string `env:"CLAUDE_MODEL"`

	SnapshotCacheTTL time.Duration `env:"SNAPSHOT_CACHE_TTL" envDefault:"30m"`
	ProviderTimeout  time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"15s"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

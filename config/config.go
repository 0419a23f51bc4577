// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings. Values come from the environment (and a
// .env file when present); command-line flags in main override them.
type Config struct {
	Host          string        `env:"HOST" envDefault:"localhost"`
	Port          int           `env:"PORT" envDefault:"8080"`
	WebDir        string        `env:"WEB_DIR" envDefault:"public"`
	Debug         bool          `env:"DEBUG" envDefault:"false"`
	GameRetention time.Duration `env:"GAME_RETENTION" envDefault:"24h"`
	MCPEnabled    bool          `env:"MCP_ENABLED" envDefault:"true"`
}

// FromEnv parses the configuration from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

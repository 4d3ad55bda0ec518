package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Production backend address, used when ENV selects the deployed
// environment and no explicit API_URL override is present.
const productionBaseURL = "https://api.ecombuddha.ai/api"

// Config holds all application configuration.
type Config struct {
	API     APIConfig
	Session SessionConfig
	Logging LogConfig
	Poll    PollConfig
}

// APIConfig holds backend API configuration.
type APIConfig struct {
	BaseURL     string        `envconfig:"API_URL" default:"http://localhost:5000/api"`
	Environment string        `envconfig:"ENV" default:"development"`
	Timeout     time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	RateLimit   float64       `envconfig:"API_RATE_LIMIT" default:"0"`
}

// SessionConfig holds session persistence configuration.
type SessionConfig struct {
	StorePath     string `envconfig:"SESSION_STORE" default:"console.db"`
	AllowlistPath string `envconfig:"ALLOWLIST_PATH" default:""`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// PollConfig holds dashboard auto-refresh configuration.
type PollConfig struct {
	Interval time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	Enabled  bool          `envconfig:"POLL_ENABLED" default:"true"`
}

// Load loads configuration from environment variables. The backend base
// address is resolved once here; callers never re-detect the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.resolveBaseURL()
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:5000/api",
			Environment: "development",
			Timeout:     30 * time.Second,
		},
		Session: SessionConfig{
			StorePath: "console.db",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Poll: PollConfig{
			Interval: 30 * time.Second,
			Enabled:  true,
		},
	}
}

// resolveBaseURL switches to the deployed backend when running in
// production without an explicit API_URL. The env var itself decides
// whether an override was given; an operator may explicitly point a
// production build at a local backend.
func (c *Config) resolveBaseURL() {
	if !c.IsProduction() {
		return
	}
	if os.Getenv("API_URL") != "" {
		return
	}
	c.API.BaseURL = productionBaseURL
}

// IsProduction reports whether the deployed environment is selected.
func (c *Config) IsProduction() bool {
	return c.API.Environment == "production" || c.API.Environment == "prod"
}

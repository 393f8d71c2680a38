// Package config resolves the process configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the settings needed to talk to the SweatStack API.
type Config struct {
	// APIKey authenticates every API call. The server refuses to start without it.
	APIKey string `env:"SWEATSTACK_API_KEY" env-required:"true" env-description:"SweatStack API key"`

	// BaseURL is the root of the SweatStack API.
	BaseURL string `env:"SWEATSTACK_URL" env-default:"https://app.sweatstack.no" env-description:"SweatStack API base URL"`

	// RequestsPerSecond caps outgoing API calls across all tool invocations.
	RequestsPerSecond int `env:"SWEATSTACK_REQUESTS_PER_SECOND" env-default:"10" env-description:"Maximum SweatStack API requests per second"`

	// Timeout bounds a single API request.
	Timeout time.Duration `env:"SWEATSTACK_TIMEOUT" env-default:"30s" env-description:"Timeout for a single SweatStack API request"`
}

// Load reads the configuration from the process environment. When envFile
// exists its variables are exported into the environment first.
func Load(envFile string) (*Config, error) {
	var cfg Config

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := cleanenv.ReadConfig(envFile, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config from %s: %w", envFile, err)
			}
			return validate(&cfg)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", envFile, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env config: %w", err)
	}
	return validate(&cfg)
}

func validate(cfg *Config) (*Config, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SWEATSTACK_API_KEY is not set; set it in the environment or the .env file")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("SWEATSTACK_URL cannot be empty")
	}
	if cfg.RequestsPerSecond < 1 {
		return nil, fmt.Errorf("SWEATSTACK_REQUESTS_PER_SECOND must be at least 1, got %d", cfg.RequestsPerSecond)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("SWEATSTACK_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	return cfg, nil
}

// Usage returns a description of the supported environment variables.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

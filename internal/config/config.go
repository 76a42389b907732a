// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr  string
	Environment string
	FrontendURL string
	ToolTimeout time.Duration
	LogLevel    slog.Level
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional: PRAPPROVER_LISTEN_ADDR (127.0.0.1:4000),
// PRAPPROVER_ENV (development), PRAPPROVER_FRONTEND_URL (http://localhost:3000),
// PRAPPROVER_TOOL_TIMEOUT (0, no limit) and PRAPPROVER_LOG_LEVEL (info).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:4000"
	if v, ok := os.LookupEnv("PRAPPROVER_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	environment := "development"
	if v, ok := os.LookupEnv("PRAPPROVER_ENV"); ok && v != "" {
		environment = v
	}

	frontendURL := "http://localhost:3000"
	if v, ok := os.LookupEnv("PRAPPROVER_FRONTEND_URL"); ok {
		frontendURL = strings.TrimRight(v, "/")
	}

	var toolTimeout time.Duration
	if v, ok := os.LookupEnv("PRAPPROVER_TOOL_TIMEOUT"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PRAPPROVER_TOOL_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("PRAPPROVER_TOOL_TIMEOUT must not be negative, got %s", parsed)
		}
		toolTimeout = parsed
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("PRAPPROVER_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("PRAPPROVER_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		ListenAddr:  listenAddr,
		Environment: environment,
		FrontendURL: frontendURL,
		ToolTimeout: toolTimeout,
		LogLevel:    logLevel,
	}, nil
}

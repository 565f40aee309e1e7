// Package config loads application settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application settings.
type Config struct {
	Port        int
	TemplateDir string
	LogLevel    string
	EnableMCP   bool
	EnableHTTP  bool
	Debug       bool
}

// Load reads settings from environment variables, falling back to defaults.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        8080,
		TemplateDir: "./templates",
		LogLevel:    "info",
		EnableMCP:   true,
		EnableHTTP:  true,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := os.Getenv("TEMPLATE_DIR"); v != "" {
		cfg.TemplateDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	var err error
	if cfg.EnableMCP, err = envBool("ENABLE_MCP", cfg.EnableMCP); err != nil {
		return nil, err
	}
	if cfg.EnableHTTP, err = envBool("ENABLE_HTTP", cfg.EnableHTTP); err != nil {
		return nil, err
	}
	if cfg.Debug, err = envBool("DEBUG", cfg.Debug); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}

// Package config loads the settings shared by every service binary.
// Service-specific settings live in each service's own config package.
package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

type HTTPConfig struct {
	Addr string
}

type AppConfig struct {
	ServiceName     string
	LogLevel        string
	Env             string
	HTTP            HTTPConfig
	ShutdownTimeout time.Duration
}

// IsProduction reports whether APP_ENV=production.
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName:     strings.TrimSpace(os.Getenv("SERVICE_NAME")),
		LogLevel:        strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		Env:             strings.TrimSpace(os.Getenv("APP_ENV")),
		HTTP:            HTTPConfig{Addr: strings.TrimSpace(os.Getenv("HTTP_ADDR"))},
		ShutdownTimeout: 10 * time.Second,
	}
	if cfg.ServiceName == "" {
		return AppConfig{}, errors.New("SERVICE_NAME is required")
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if v := strings.TrimSpace(os.Getenv("SHUTDOWN_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return AppConfig{}, errors.New("SHUTDOWN_TIMEOUT must be a positive duration")
		}
		cfg.ShutdownTimeout = d
	}
	return cfg, nil
}

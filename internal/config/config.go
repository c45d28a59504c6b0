package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	AppHost         string        `env:"APP_HOST" envDefault:"localhost:8080"`
	Port            string        `env:"PORT" envDefault:"8080"`
	MaxUploadMB     int           `env:"MAX_UPLOAD_MB" envDefault:"20"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// BodyLimit returns the request body limit in bytes.
func (c ServerConfig) BodyLimit() int {
	return c.MaxUploadMB * 1024 * 1024
}

// CORSConfig holds cross-origin settings. The defaults allow every origin,
// which suits local development.
type CORSConfig struct {
	AllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	AllowMethods string `env:"CORS_ALLOW_METHODS" envDefault:"GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS"`
	// Empty reflects the headers requested in the preflight.
	AllowHeaders string `env:"CORS_ALLOW_HEADERS"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	TimeZone string `env:"APP_TIMEZONE" envDefault:"UTC"`
}

// Location resolves TimeZone.
func (c LogConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables.
type AppConfig struct {
	Server ServerConfig
	CORS   CORSConfig
	Log    LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Server.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.Server.MaxUploadMB)
	}
	return cfg, nil
}

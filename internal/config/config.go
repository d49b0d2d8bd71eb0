package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/ptlog/ptlog/internal/week"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the logbook service.
// Environment variables are parsed from the PTLOG_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage. Driver is postgres or sqlite; "auto" picks postgres when a
	// DSN is present, sqlite otherwise.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"ptlog.db"`

	// Training calendar. Week 1 starts on this Monday.
	TrainingStart string `envconfig:"TRAINING_START" default:"2025-07-21"`
	TrainingWeeks int    `envconfig:"TRAINING_WEEKS" default:"8"`

	// AI provider. An empty API key disables enhancement rather than
	// failing startup.
	ProviderAPIKey         string `envconfig:"PROVIDER_API_KEY" default:""`
	ProviderBaseURL        string `envconfig:"PROVIDER_BASE_URL" default:"https://api.anthropic.com"`
	ProviderModel          string `envconfig:"PROVIDER_MODEL" default:"claude-3-haiku-20240307"`
	ProviderMaxTokens      int    `envconfig:"PROVIDER_MAX_TOKENS" default:"2000"`
	ProviderTimeoutSeconds int    `envconfig:"PROVIDER_TIMEOUT_SECONDS" default:"60"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates the driver choice and derives it when "auto".
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if _, err := c.Calendar(); err != nil {
		return err
	}
	return nil
}

// Calendar parses TrainingStart into a week calendar.
func (c *Config) Calendar() (week.Calendar, error) {
	start, err := time.Parse("2006-01-02", c.TrainingStart)
	if err != nil {
		return week.Calendar{}, fmt.Errorf("invalid TRAINING_START %q: %w", c.TrainingStart, err)
	}
	return week.NewCalendar(start)
}

// New creates a new Config by parsing environment variables.
// Example: PTLOG_HTTP_PORT, PTLOG_POSTGRES_DSN, PTLOG_PROVIDER_API_KEY.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("PTLOG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Str("training_start", cfg.TrainingStart).
		Bool("provider_key_present", cfg.ProviderAPIKey != "").
		Str("provider_model", cfg.ProviderModel).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		DBDriver:                  "sqlite",
		SQLitePath:                ":memory:",
		TrainingStart:             "2025-07-21",
		TrainingWeeks:             8,
		ProviderModel:             "claude-3-haiku-20240307",
		ProviderMaxTokens:         2000,
		ProviderTimeoutSeconds:    5,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
}

// IsTesting returns true if the environment is set to testing.
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }

// EnhancementEnabled reports whether an AI provider credential is configured.
func (c *Config) EnhancementEnabled() bool { return c.ProviderAPIKey != "" }

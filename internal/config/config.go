package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cotdex/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Cache    CacheConfig    `validate:"required"`
	Style    StyleConfig
	Metrics  MetricsConfig
	LogLevel string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL    string `validate:"required"`
	Driver string `validate:"oneof=postgres sqlite"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string `validate:"oneof=debug release test"`
}

// CacheConfig selects and tunes the result cache
type CacheConfig struct {
	Backend    string        `validate:"oneof=memory badger"`
	TTL        time.Duration `validate:"gt=0"`
	BadgerPath string        `validate:"required_if=Backend badger"`
}

// StyleConfig points at an optional palette/size override file
type StyleConfig struct {
	File string
}

// MetricsConfig toggles the /metrics endpoint
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = *loadServerConfig()
	config.Cache = *loadCacheConfig()
	config.Style = StyleConfig{File: getEnvOrDefault("STYLE_FILE", "")}
	config.Metrics = MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)}
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "INFO")

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:    url,
		Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "postgres")),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadCacheConfig() *CacheConfig {
	return &CacheConfig{
		Backend:    strings.ToLower(getEnvOrDefault("CACHE_BACKEND", "memory")),
		TTL:        getEnvDurationOrDefault("CACHE_TTL", time.Hour),
		BadgerPath: getEnvOrDefault("BADGER_PATH", ""),
	}
}

var configValidator = validator.New()

func validateConfig(config *Config) error {
	err := configValidator.Struct(config)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ConfigInvalid(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %v fails %s", fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return errors.ConfigInvalid(strings.Join(msgs, "; "))
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90m") or plain seconds ("3600").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

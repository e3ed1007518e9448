// Package config reads server and CLI settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Ledger
	Timezone         string
	Currency         string
	GroupConcurrency int

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:      getEnv("DB_PATH", "./data/ledger.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		Timezone:         getEnv("LEDGER_TIMEZONE", "UTC"),
		Currency:         strings.ToUpper(getEnv("CURRENCY", money.USD)),
		GroupConcurrency: getEnvInt("GROUP_CONCURRENCY", 4),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
}

// Validate reports every problem with the configuration at once.
// forServer additionally requires the settings only the RPC server needs.
func (c *Config) Validate(forServer bool) error {
	var errors []string

	if forServer {
		if port, err := strconv.Atoi(c.Port); err != nil {
			errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
		}

		if len(c.JWTSecret) < 16 {
			errors = append(errors, "JWT_SECRET must be at least 16 characters")
		}
		if c.TokenTTL < time.Minute {
			errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
		}
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errors = append(errors, "DB_PATH cannot be empty when using the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using the postgres driver")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid database driver '%s': must be one of [%s %s]", c.DBDriver, DriverSQLite, DriverPostgres))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if money.GetCurrency(c.Currency) == nil {
		errors = append(errors, fmt.Sprintf("unknown currency '%s'", c.Currency))
	}

	if c.GroupConcurrency < 1 || c.GroupConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid group concurrency %d: must be between 1 and 64", c.GroupConcurrency))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location returns the ledger's calendar location. Call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

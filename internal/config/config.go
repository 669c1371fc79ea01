// Package config implements half of C11, the OptionLoader: environment-
// variable configuration (run-history database path, default log level,
// default large-class threshold, run retention), read the same way the
// teacher's original config package reads its settings — a typed struct
// populated from os.Getenv with built-in defaults — preceded by a
// best-effort godotenv.Load() so a local .env file can seed the process
// environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the process-wide settings sourced from the environment.
type Config struct {
	DBPath                string
	LogLevel              string
	DefaultLargeClassSize int
	RetentionRuns         int
}

// Load reads a .env file if present (errors are ignored — a missing .env
// is not a failure) and builds a Config from environment variables,
// falling back to built-in defaults.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:                os.Getenv("STEREOSCOPE_DB_PATH"),
		LogLevel:              os.Getenv("STEREOSCOPE_LOG_LEVEL"),
		DefaultLargeClassSize: 21,
		RetentionRuns:         20,
	}

	if cfg.DBPath == "" {
		cfg.DBPath = "stereoscope.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if thresholdStr := os.Getenv("STEREOSCOPE_LARGE_CLASS_THRESHOLD"); thresholdStr != "" {
		if threshold, err := strconv.Atoi(thresholdStr); err == nil && threshold > 0 {
			cfg.DefaultLargeClassSize = threshold
		}
	}

	if retentionStr := os.Getenv("STEREOSCOPE_DB_RETENTION_RUNS"); retentionStr != "" {
		if retention, err := strconv.Atoi(retentionStr); err == nil && retention >= 0 {
			cfg.RetentionRuns = retention
		}
	}

	return cfg
}

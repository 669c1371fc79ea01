package config

import (
	"os"
	"testing"
)

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STEREOSCOPE_DB_PATH",
		"STEREOSCOPE_LOG_LEVEL",
		"STEREOSCOPE_LARGE_CLASS_THRESHOLD",
		"STEREOSCOPE_DB_RETENTION_RUNS",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnvVars(t)

	cfg := Load()

	if cfg.DBPath != "stereoscope.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "stereoscope.db")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.DefaultLargeClassSize != 21 {
		t.Errorf("DefaultLargeClassSize = %d, want 21", cfg.DefaultLargeClassSize)
	}
	if cfg.RetentionRuns != 20 {
		t.Errorf("RetentionRuns = %d, want 20", cfg.RetentionRuns)
	}
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	clearConfigEnvVars(t)
	os.Setenv("STEREOSCOPE_DB_PATH", "/tmp/runs.db")
	os.Setenv("STEREOSCOPE_LOG_LEVEL", "debug")
	os.Setenv("STEREOSCOPE_LARGE_CLASS_THRESHOLD", "30")
	os.Setenv("STEREOSCOPE_DB_RETENTION_RUNS", "5")
	defer clearConfigEnvVars(t)

	cfg := Load()

	if cfg.DBPath != "/tmp/runs.db" {
		t.Errorf("DBPath = %q, want /tmp/runs.db", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.DefaultLargeClassSize != 30 {
		t.Errorf("DefaultLargeClassSize = %d, want 30", cfg.DefaultLargeClassSize)
	}
	if cfg.RetentionRuns != 5 {
		t.Errorf("RetentionRuns = %d, want 5", cfg.RetentionRuns)
	}
}

func TestLoad_IgnoresInvalidNumericOverrides(t *testing.T) {
	clearConfigEnvVars(t)
	os.Setenv("STEREOSCOPE_LARGE_CLASS_THRESHOLD", "not-a-number")
	os.Setenv("STEREOSCOPE_DB_RETENTION_RUNS", "-5")
	defer clearConfigEnvVars(t)

	cfg := Load()

	if cfg.DefaultLargeClassSize != 21 {
		t.Errorf("DefaultLargeClassSize = %d, want default 21 on invalid input", cfg.DefaultLargeClassSize)
	}
	if cfg.RetentionRuns != 20 {
		t.Errorf("RetentionRuns = %d, want default 20 on negative input", cfg.RetentionRuns)
	}
}

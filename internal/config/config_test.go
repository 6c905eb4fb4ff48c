package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.GeminiAPIKey != "" {
		t.Errorf("Expected empty API key, got %q", cfg.GeminiAPIKey)
	}
	if cfg.RateLimitDelay() != 2500*time.Millisecond {
		t.Errorf("Expected 2.5s rate limit, got %s", cfg.RateLimitDelay())
	}
	if cfg.StorageKey != "cineTrack_library_v1" {
		t.Errorf("Unexpected storage key %q", cfg.StorageKey)
	}
	if cfg.DefaultYear != "2019" {
		t.Errorf("Unexpected default year %q", cfg.DefaultYear)
	}
	if cfg.DatabaseFile != filepath.Join(dir, "cinetrack.db") {
		t.Errorf("Unexpected database path %q", cfg.DatabaseFile)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("Unexpected port %q", cfg.ServerPort)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("RATE_LIMIT_DELAY_MS", "4000")
	t.Setenv("DEFAULT_YEAR", "2018")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.GeminiAPIKey != "legacy-key" {
		t.Errorf("Expected API_KEY fallback, got %q", cfg.GeminiAPIKey)
	}
	if cfg.RateLimitDelay() != 4*time.Second {
		t.Errorf("Expected 4s rate limit, got %s", cfg.RateLimitDelay())
	}
	if cfg.DefaultYear != "2018" {
		t.Errorf("Expected 2018, got %q", cfg.DefaultYear)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("Expected json log format, got %q", cfg.LogFormat)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		RateLimitDelayMs:     2500,
		LookupTimeoutSeconds: 60,
		DetailsCacheMinutes:  60,
		DefaultYear:          "2019",
		StorageKey:           "lib",
		BackupRetention:      7,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate limit", func(c *Config) { c.RateLimitDelayMs = 0 }},
		{"zero timeout", func(c *Config) { c.LookupTimeoutSeconds = 0 }},
		{"negative cache", func(c *Config) { c.DetailsCacheMinutes = -1 }},
		{"bad year", func(c *Config) { c.DefaultYear = "19" }},
		{"empty storage key", func(c *Config) { c.StorageKey = "" }},
		{"no retention", func(c *Config) { c.BackupRetention = 0 }},
	}

	for _, tt := range tests {
		cfg := valid
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amaumene/cinetrack/internal/utils"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Gemini
	GeminiAPIKey         string // empty is allowed: lookups then fail fast
	GeminiModel          string
	GeminiBaseURL        string
	LookupTimeoutSeconds int // Per-call HTTP timeout (default: 60)
	DetailsCacheMinutes  int // How long detail lookups are cached (default: 60)

	// Enrichment queue
	RateLimitDelayMs int // Wait between two automatic lookups (default: 2500)

	// Catalogue
	SourceFile  string // Viewing log; empty selects the built-in log
	DefaultYear string // Year for items before the first header (default: 2019)
	StorageKey  string // Key of the persisted library blob

	// Server
	ServerPort string

	// Jobs
	ProgressReportSchedule string
	BackupSchedule         string
	BackupRetention        int

	// Paths
	DatabaseFile string // $CONFIG_DIR/cinetrack.db

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"
}

// RateLimitDelay returns the wait between two automatic lookups
func (c *Config) RateLimitDelay() time.Duration {
	return time.Duration(c.RateLimitDelayMs) * time.Millisecond
}

// LookupTimeout returns the per-call lookup timeout
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.LookupTimeoutSeconds) * time.Second
}

// DetailsCacheTTL returns how long detail lookups are cached
func (c *Config) DetailsCacheTTL() time.Duration {
	return time.Duration(c.DetailsCacheMinutes) * time.Minute
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	// Setup viper FIRST to load .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = v.ReadInConfig()

	// Set defaults
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("LOOKUP_TIMEOUT_SECONDS", 60)
	v.SetDefault("DETAILS_CACHE_MINUTES", 60)
	v.SetDefault("RATE_LIMIT_DELAY_MS", 2500)
	v.SetDefault("DEFAULT_YEAR", "2019")
	v.SetDefault("STORAGE_KEY", "cineTrack_library_v1")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("PROGRESS_REPORT_SCHEDULE", "@every 1m")
	v.SetDefault("BACKUP_SCHEDULE", "0 3 * * *")
	v.SetDefault("BACKUP_RETENTION", 7)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	configDir, err := resolveConfigDir(v.GetString("CONFIG_DIR"))
	if err != nil {
		return nil, err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	apiKey := v.GetString("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = v.GetString("API_KEY")
	}

	config := &Config{
		// Gemini
		GeminiAPIKey:         apiKey,
		GeminiModel:          v.GetString("GEMINI_MODEL"),
		GeminiBaseURL:        v.GetString("GEMINI_BASE_URL"),
		LookupTimeoutSeconds: v.GetInt("LOOKUP_TIMEOUT_SECONDS"),
		DetailsCacheMinutes:  v.GetInt("DETAILS_CACHE_MINUTES"),

		// Enrichment queue
		RateLimitDelayMs: v.GetInt("RATE_LIMIT_DELAY_MS"),

		// Catalogue
		SourceFile:  v.GetString("SOURCE_FILE"),
		DefaultYear: v.GetString("DEFAULT_YEAR"),
		StorageKey:  v.GetString("STORAGE_KEY"),

		// Server
		ServerPort: v.GetString("SERVER_PORT"),

		// Jobs
		ProgressReportSchedule: v.GetString("PROGRESS_REPORT_SCHEDULE"),
		BackupSchedule:         v.GetString("BACKUP_SCHEDULE"),
		BackupRetention:        v.GetInt("BACKUP_RETENTION"),

		// Paths
		DatabaseFile: filepath.Join(configDir, "cinetrack.db"),

		// Logging
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the values that have no safe fallback
func (c *Config) Validate() error {
	if c.RateLimitDelayMs <= 0 {
		return fmt.Errorf("RATE_LIMIT_DELAY_MS must be positive")
	}
	if c.LookupTimeoutSeconds <= 0 {
		return fmt.Errorf("LOOKUP_TIMEOUT_SECONDS must be positive")
	}
	if c.DetailsCacheMinutes < 0 {
		return fmt.Errorf("DETAILS_CACHE_MINUTES must not be negative")
	}
	if !utils.IsYear(c.DefaultYear) {
		return fmt.Errorf("DEFAULT_YEAR must be a 4-digit year, got %q", c.DefaultYear)
	}
	if c.StorageKey == "" {
		return fmt.Errorf("STORAGE_KEY is required")
	}
	if c.BackupRetention < 1 {
		return fmt.Errorf("BACKUP_RETENTION must be at least 1")
	}
	return nil
}

// resolveConfigDir returns the absolute configuration directory
func resolveConfigDir(configDir string) (string, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", "cinetrack"), nil
	}

	// Convert relative path to absolute path
	absPath, err := filepath.Abs(configDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
	}
	return absPath, nil
}

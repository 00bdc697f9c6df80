package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"placementdash/internal/errors"
	"placementdash/ports"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Sheets      SheetsConfig
	Credentials CredentialsConfig
	Database    DatabaseConfig
	Profiling   ProfilingConfig
	Log         LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Host           string
	Port           string
	GinMode        string
	AllowedOrigins []string
	FetchTimeout   time.Duration
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatasetConfig describes where one logical dataset can be read from.
type DatasetConfig = ports.Dataset

// SheetsConfig holds both datasets the dashboard joins
type SheetsConfig struct {
	Student      DatasetConfig
	Applications DatasetConfig
}

// CredentialsConfig holds raw service account material; resolution happens in internal/credentials
type CredentialsConfig struct {
	JSON string
	File string
}

// DatabaseConfig holds the optional read-only Postgres source
type DatabaseConfig struct {
	URL string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

const (
	defaultStudentSheetID      = "1OE2AxpBiFN_4T2IFMANmJFrY_bO6QnCDwWFD3Z_WWec"
	defaultApplicationsSheetID = "1Dbc_k3WZlaICcItbMq54GCjxIwzx2OEeZPrLTHGB7ak"
	defaultAllowedOrigins      = "http://localhost:5173,http://localhost:3000"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:      *loadServerConfig(),
		Sheets:      *loadSheetsConfig(),
		Credentials: *loadCredentialsConfig(),
		Database:    DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Profiling:   *loadProfilingConfig(),
		Log:         LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:           getEnvOrDefault("HOST", "127.0.0.1"),
		Port:           getEnvOrDefault("PORT", "3001"),
		GinMode:        getEnvOrDefault("GIN_MODE", "release"),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", defaultAllowedOrigins)),
		FetchTimeout:   getEnvDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
	}
}

func loadSheetsConfig() *SheetsConfig {
	return &SheetsConfig{
		Student: DatasetConfig{
			Name:          "student master",
			SpreadsheetID: getEnvOrDefault("STUDENT_MASTER_SHEET_ID", defaultStudentSheetID),
			Range:         getEnvOrDefault("STUDENT_SHEET_RANGE", "Main"),
			PublishedURL:  strings.TrimSpace(os.Getenv("STUDENT_PUBLISHED_CSV_URL")),
			Table:         strings.TrimSpace(os.Getenv("STUDENT_TABLE")),
			File:          strings.TrimSpace(os.Getenv("STUDENT_FILE")),
		},
		Applications: DatasetConfig{
			Name:          "applications",
			SpreadsheetID: getEnvOrDefault("APPLICATIONS_SHEET_ID", defaultApplicationsSheetID),
			Range:         getEnvOrDefault("APPLICATIONS_SHEET_RANGE", "Main"),
			PublishedURL:  strings.TrimSpace(os.Getenv("APPLICATIONS_PUBLISHED_CSV_URL")),
			Table:         strings.TrimSpace(os.Getenv("APPLICATIONS_TABLE")),
			File:          strings.TrimSpace(os.Getenv("APPLICATIONS_FILE")),
		},
	}
}

func loadCredentialsConfig() *CredentialsConfig {
	return &CredentialsConfig{
		JSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		File: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric, got " + strconv.Quote(config.Server.Port))
	}
	if config.Profiling.Enabled {
		if _, err := strconv.Atoi(config.Profiling.Port); err != nil {
			return errors.ConfigInvalid("PPROF_PORT must be numeric, got " + strconv.Quote(config.Profiling.Port))
		}
	}
	if config.Server.FetchTimeout <= 0 {
		return errors.ConfigInvalid("FETCH_TIMEOUT must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

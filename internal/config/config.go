package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shoplens/internal/errors"
)

// Source kinds
const (
	SourceFile = "file"
	SourceJSON = "json"
	SourceSQL  = "sql"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	UI        UIConfig
	Source    SourceConfig
	Dashboard DashboardConfig
	LogLevel  string
}

// ServerConfig holds JSON API server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// UIConfig holds HTML dashboard settings
type UIConfig struct {
	Port string
}

// SourceConfig says where the dataset comes from. Kind is derived from the
// other fields when not set explicitly.
type SourceConfig struct {
	Kind     string
	Path     string // CSV/XLSX/JSON path or JSON URL
	Sheet    string
	DataPath string // gjson path for JSON sources
	Driver   string // postgres or sqlite3
	DSN      string
	Table    string
}

// DashboardConfig holds view computation settings
type DashboardConfig struct {
	LayoutFile string
	Workers    int
	CacheSize  int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// FromEnv reads configuration from environment variables without validating
// it, so callers such as the CLI can override fields first
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			GinMode:         getEnvOrDefault("GIN_MODE", "debug"),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		UI: UIConfig{
			Port: getEnvOrDefault("UI_PORT", "8081"),
		},
		Source: loadSourceConfig(),
		Dashboard: DashboardConfig{
			LayoutFile: getEnvOrDefault("LAYOUT_FILE", ""),
			Workers:    getEnvIntOrDefault("AGGREGATE_WORKERS", 4),
			CacheSize:  getEnvIntOrDefault("DATASET_CACHE_SIZE", 4),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}
}

func loadSourceConfig() SourceConfig {
	src := SourceConfig{
		Kind:     strings.ToLower(getEnvOrDefault("SOURCE_KIND", "")),
		Path:     getEnvOrDefault("DATA_SOURCE", ""),
		Sheet:    getEnvOrDefault("EXCEL_SHEET", "Sheet1"),
		DataPath: getEnvOrDefault("JSON_DATA_PATH", ""),
		Driver:   getEnvOrDefault("DB_DRIVER", ""),
		DSN:      getEnvOrDefault("DATABASE_URL", ""),
		Table:    getEnvOrDefault("DATASET_TABLE", "shopping"),
	}
	if src.Kind == "" {
		src.Kind = DetectSourceKind(src)
	}
	return src
}

// DetectSourceKind picks the source kind from the configured fields
func DetectSourceKind(src SourceConfig) string {
	if src.Driver != "" || (src.Path == "" && src.DSN != "") {
		return SourceSQL
	}
	lower := strings.ToLower(src.Path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || filepath.Ext(lower) == ".json" {
		return SourceJSON
	}
	return SourceFile
}

// Validate checks a source configuration
func (s SourceConfig) Validate() error {
	switch s.Kind {
	case SourceFile:
		if s.Path == "" {
			return errors.ConfigInvalid("DATA_SOURCE is required for file sources")
		}
		switch strings.ToLower(filepath.Ext(s.Path)) {
		case ".csv", ".xlsx":
		default:
			return errors.ConfigInvalid("DATA_SOURCE must be a .csv or .xlsx file")
		}
	case SourceJSON:
		if s.Path == "" {
			return errors.ConfigInvalid("DATA_SOURCE is required for JSON sources")
		}
	case SourceSQL:
		if s.DSN == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for SQL sources")
		}
		if s.Driver == "" {
			return errors.ConfigInvalid("DB_DRIVER is required for SQL sources")
		}
		if s.Table == "" {
			return errors.ConfigInvalid("DATASET_TABLE is required for SQL sources")
		}
	default:
		return errors.ConfigInvalid("unknown SOURCE_KIND " + strconv.Quote(s.Kind))
	}
	return nil
}

// Validate checks the whole configuration
func (cfg *Config) Validate() error {
	if err := cfg.Source.Validate(); err != nil {
		return err
	}
	if cfg.Dashboard.Workers < 1 {
		return errors.ConfigInvalid("AGGREGATE_WORKERS must be at least 1")
	}
	if cfg.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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

// Package config provides configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jobrunner/gnss/internal/domain"
)

// Database sources.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"` // e.g., ["https://example.com", "*.sub.domain.tld"]
}

// Enabled returns true if CORS is configured with at least one allowed origin.
func (c *CORSConfig) Enabled() bool {
	return len(c.AllowedOrigins) > 0
}

// DatabaseConfig selects where the SBAS database is loaded from.
type DatabaseConfig struct {
	Source string `mapstructure:"source"` // embedded, file, sqlite
	Path   string `mapstructure:"path"`   // required for file and sqlite
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// WatchConfig controls validation of candidate database files on disk.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Paths    []string      `mapstructure:"paths"`
	Debounce time.Duration `mapstructure:"debounce"`
	Cooldown time.Duration `mapstructure:"cooldown"` // minimum interval between full validation runs
}

// Defaults sets the default configuration values.
func Defaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.cors.allowed_origins", []string{})

	// Database defaults
	viper.SetDefault("database.source", SourceEmbedded)
	viper.SetDefault("database.path", "")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("metrics.namespace", "gnss")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// Watch defaults
	viper.SetDefault("watch.enabled", false)
	viper.SetDefault("watch.paths", []string{"./data"})
	viper.SetDefault("watch.debounce", 500*time.Millisecond)
	viper.SetDefault("watch.cooldown", 30*time.Second)
}

// LoadDotEnv loads .env files into the process environment. A missing
// file is not an error; existing variables are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load loads configuration from environment and config file.
func Load(configPath string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	Defaults()

	// Environment variable binding
	viper.SetEnvPrefix("GNSS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/gnss")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &domain.ConfigError{Field: "server.port", Message: fmt.Sprintf("invalid port %d", c.Server.Port)}
	}

	switch c.Database.Source {
	case SourceEmbedded:
	case SourceFile, SourceSQLite:
		if c.Database.Path == "" {
			return &domain.ConfigError{
				Field:   "database.path",
				Message: fmt.Sprintf("required for source %q", c.Database.Source),
			}
		}
	default:
		return &domain.ConfigError{
			Field:   "database.source",
			Message: fmt.Sprintf("unknown source %q", c.Database.Source),
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return &domain.ConfigError{Field: "metrics.path", Message: "must start with /"}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		return &domain.ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return &domain.ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}

	if c.Watch.Enabled && len(c.Watch.Paths) == 0 {
		return &domain.ConfigError{Field: "watch.paths", Message: "at least one path is required"}
	}

	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/jobrunner/gnss/internal/domain"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8080},
		Database: DatabaseConfig{Source: SourceEmbedded},
		Metrics:  MetricsConfig{Enabled: true, Path: "/metrics"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"file without path", func(c *Config) { c.Database.Source = SourceFile }, "database.path"},
		{"sqlite without path", func(c *Config) { c.Database.Source = SourceSQLite }, "database.path"},
		{"sqlite with path", func(c *Config) {
			c.Database.Source = SourceSQLite
			c.Database.Path = "sbas.sqlite"
		}, ""},
		{"unknown source", func(c *Config) { c.Database.Source = "s3" }, "database.source"},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"metrics path ignored when disabled", func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.Path = ""
		}, ""},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"watch without paths", func(c *Config) { c.Watch.Enabled = true }, "watch.paths"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Error("ConfigError should unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Source != SourceEmbedded {
		t.Errorf("Database.Source = %q, want embedded", cfg.Database.Source)
	}
	if cfg.Metrics.Namespace != "gnss" {
		t.Errorf("Metrics.Namespace = %q, want gnss", cfg.Metrics.Namespace)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 500ms", cfg.Watch.Debounce)
	}
	if cfg.Server.CORS.Enabled() {
		t.Error("CORS should be disabled by default")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  cors:
    allowed_origins: ["https://example.com"]
database:
  source: sqlite
  path: /var/lib/gnss/sbas.sqlite
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GNSS_METRICS_NAMESPACE", "sbas")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Server.CORS.Enabled() {
		t.Error("CORS should be enabled")
	}
	if cfg.Database.Source != SourceSQLite || cfg.Database.Path != "/var/lib/gnss/sbas.sqlite" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Metrics.Namespace != "sbas" {
		t.Errorf("Metrics.Namespace = %q, want sbas from environment", cfg.Metrics.Namespace)
	}
}

func TestLoadInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database:\n  source: file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Load() error = %v, want *ConfigError", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("GNSS_DOTENV_PROBE=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GNSS_DOTENV_PROBE", "")
	_ = os.Unsetenv("GNSS_DOTENV_PROBE")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if got := os.Getenv("GNSS_DOTENV_PROBE"); got != "loaded" {
		t.Errorf("GNSS_DOTENV_PROBE = %q, want loaded", got)
	}
}

func TestAddress(t *testing.T) {
	cfg := ServerConfig{Host: "localhost", Port: 8080}
	if got := cfg.Address(); got != "localhost:8080" {
		t.Errorf("Address() = %q, want localhost:8080", got)
	}
}

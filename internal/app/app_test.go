package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jobrunner/gnss/internal/adapters/watcher"
	"github.com/jobrunner/gnss/internal/config"
	"github.com/jobrunner/gnss/internal/domain"
)

const candidateDoc = `[
  {"prn": 123, "constellation": "EGNOS", "vehicle": "ASTRA-5B",
   "coverage": {"type": "Polygon", "coordinates": [[[-30, 30], [45, 30], [45, 72], [-30, 30]]]}}
]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 8080, ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{Source: config.SourceEmbedded},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "gnss"},
		Logging:  config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		cfg      config.DatabaseConfig
		wantName string
		wantErr  bool
	}{
		{config.DatabaseConfig{Source: config.SourceEmbedded}, "embedded", false},
		{config.DatabaseConfig{}, "embedded", false},
		{config.DatabaseConfig{Source: config.SourceFile, Path: "/data/sbas.json"}, "file:sbas.json", false},
		{config.DatabaseConfig{Source: config.SourceSQLite, Path: "/data/sbas.sqlite"}, "sqlite:sbas", false},
		{config.DatabaseConfig{Source: "azure"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.cfg.Source, func(t *testing.T) {
			src, err := NewSource(tt.cfg)
			if tt.wantErr {
				var cfgErr *domain.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("NewSource() error = %v, want *ConfigError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSource() error: %v", err)
			}
			if src.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", src.Name(), tt.wantName)
			}
		})
	}
}

func TestNewServesEmbeddedDatabase(t *testing.T) {
	a, err := New(testConfig(), testLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if a.Watcher != nil || a.Validation != nil {
		t.Error("watching is disabled by default")
	}

	a.Load(context.Background())

	rec := httptest.NewRecorder()
	a.HTTPServer.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/select?lon=2.35&lat=48.85", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"constellation":"EGNOS"`) {
		t.Errorf("select paris = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.HTTPServer.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics should include the Go runtime collector")
	}
}

func TestNewTwiceDoesNotPanic(t *testing.T) {
	for range 2 {
		if _, err := New(testConfig(), testLogger()); err != nil {
			t.Fatalf("New() error: %v", err)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false

	a, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	rec := httptest.NewRecorder()
	a.HTTPServer.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 with metrics disabled", rec.Code)
	}
}

func TestMissingFileSourceIsUnhealthy(t *testing.T) {
	cfg := testConfig()
	cfg.Database = config.DatabaseConfig{Source: config.SourceFile, Path: filepath.Join(t.TempDir(), "missing.json")}

	a, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	a.Load(context.Background())

	if a.HealthService.IsHealthy(context.Background()) {
		t.Error("health should report the failed load")
	}
}

func TestHandleFileEvent(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Watch = config.WatchConfig{Enabled: true, Paths: []string{dir}, Debounce: 50 * time.Millisecond}

	a, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if a.Validation == nil {
		t.Fatal("validation service should be configured")
	}
	t.Cleanup(func() {
		if a.Watcher != nil {
			_ = a.Watcher.Stop()
		}
	})

	ctx := context.Background()
	good := filepath.Join(dir, "candidate.json")
	bad := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(good, []byte(candidateDoc), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`{"not": "a list"}`), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{good, bad} {
		if err := a.handleFileEvent(ctx, watcher.Event{Path: path, Operation: watcher.OpCreate}); err != nil {
			t.Fatalf("handleFileEvent(%s) error: %v", path, err)
		}
	}

	reports := a.Validation.Reports()
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	// Sorted by path: broken.json first
	if reports[0].Valid || !reports[1].Valid {
		t.Errorf("validity = %v/%v, want false/true", reports[0].Valid, reports[1].Valid)
	}

	if err := a.handleFileEvent(ctx, watcher.Event{Path: bad, Operation: watcher.OpDelete}); err != nil {
		t.Fatalf("handleFileEvent(delete) error: %v", err)
	}
	if got := len(a.Validation.Reports()); got != 1 {
		t.Errorf("reports after delete = %d, want 1", got)
	}

	// The served database is untouched by candidate files
	db, err := a.Catalog.Database(ctx)
	if err != nil {
		t.Fatalf("Database() error: %v", err)
	}
	if db.Source() != "embedded" {
		t.Errorf("served source = %q, want embedded", db.Source())
	}
}

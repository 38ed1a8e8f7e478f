// Package app provides application initialization and wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jobrunner/gnss/internal/adapters/bundle"
	httpAdapter "github.com/jobrunner/gnss/internal/adapters/http"
	"github.com/jobrunner/gnss/internal/adapters/metrics"
	"github.com/jobrunner/gnss/internal/adapters/sqlite"
	"github.com/jobrunner/gnss/internal/adapters/storage"
	"github.com/jobrunner/gnss/internal/adapters/watcher"
	"github.com/jobrunner/gnss/internal/application"
	"github.com/jobrunner/gnss/internal/config"
	"github.com/jobrunner/gnss/internal/domain"
	"github.com/jobrunner/gnss/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Source        output.DatabaseSource
	Catalog       *application.CatalogService
	Selector      *application.SelectorService
	HealthService *application.HealthService
	Validation    *application.ValidationService
	HTTPServer    *httpAdapter.Server
	Watcher       *watcher.Watcher
	Metrics       *metrics.Collector
}

// New creates and initializes a new application. Nothing is loaded or
// started until Start.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize metrics
	var metricsCollector output.MetricsCollector = &output.NoOpMetrics{}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		app.Metrics = metrics.NewCollector(cfg.Metrics.Namespace, reg)
		metricsCollector = app.Metrics
	}

	// Initialize database source
	source, err := NewSource(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initializing database source: %w", err)
	}
	app.Source = source

	// Initialize services
	app.Catalog = application.NewCatalogService(source, metricsCollector, logger)
	app.Selector = application.NewSelectorService(app.Catalog, metricsCollector, logger)
	app.HealthService = application.NewHealthService(app.Catalog)

	// Initialize validation of candidate database files
	if cfg.Watch.Enabled {
		store := storage.NewLocalStorage(sqlite.Load, cfg.Watch.Paths...)
		app.Validation = application.NewValidationService(store, cfg.Watch.Cooldown, logger)

		w, err := watcher.New(
			watcher.Config{
				Paths:    cfg.Watch.Paths,
				Debounce: cfg.Watch.Debounce,
			},
			app.handleFileEvent,
			logger,
		)
		if err != nil {
			logger.Warn("failed to initialize file watcher", "error", err)
		} else {
			app.Watcher = w
		}
	}

	// Initialize HTTP server
	var metricsPath string
	if app.Metrics != nil {
		metricsPath = cfg.Metrics.Path
	}
	app.HTTPServer = httpAdapter.NewServer(
		cfg.Server,
		httpAdapter.Services{
			Catalog:    app.Catalog,
			Selector:   app.Selector,
			Health:     app.HealthService,
			Validation: app.Validation,
		},
		app.Metrics,
		metricsPath,
		logger,
	)

	return app, nil
}

// NewSource returns the database source selected by cfg.
func NewSource(cfg config.DatabaseConfig) (output.DatabaseSource, error) {
	switch cfg.Source {
	case config.SourceEmbedded, "":
		return bundle.NewSource(), nil
	case config.SourceFile:
		return storage.NewFileSource(cfg.Path), nil
	case config.SourceSQLite:
		return sqlite.NewSource(cfg.Path), nil
	default:
		return nil, &domain.ConfigError{Field: "database.source", Message: fmt.Sprintf("unknown source %q", cfg.Source)}
	}
}

// Load loads the SBAS database and starts the file watcher. A database
// that fails to load is logged; the health endpoints report it.
func (a *App) Load(ctx context.Context) {
	if err := a.Catalog.Load(ctx); err != nil {
		a.Logger.Error("sbas database unavailable", "error", err)
	}

	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			a.Logger.Warn("failed to start file watcher", "error", err)
		}
	}

	if a.Validation != nil {
		go func() {
			if _, err := a.Validation.ValidateAll(ctx); err != nil {
				a.Logger.Warn("initial validation failed", "error", err)
			}
		}()
	}
}

// Start loads the database and serves HTTP until Shutdown.
func (a *App) Start(ctx context.Context) error {
	a.Load(ctx)

	err := a.HTTPServer.Start()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	// Stop watcher
	if a.Watcher != nil {
		_ = a.Watcher.Stop()
	}

	// Shutdown HTTP server
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	return nil
}

// handleFileEvent re-validates a candidate database file. The served
// database is never replaced.
func (a *App) handleFileEvent(ctx context.Context, event watcher.Event) error {
	a.Logger.Info("file event", "path", event.Path, "operation", event.Operation.String())

	switch event.Operation {
	case watcher.OpCreate, watcher.OpModify:
		// Invalid files are logged and reported by the validation service
		a.Validation.ValidateFile(ctx, event.Path)
	case watcher.OpDelete:
		a.Validation.Forget(event.Path)
	}

	return nil
}

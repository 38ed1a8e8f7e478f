// Package http provides the HTTP server and handlers.
package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobrunner/gnss/internal/adapters/metrics"
	"github.com/jobrunner/gnss/internal/application"
	"github.com/jobrunner/gnss/internal/config"
	"github.com/jobrunner/gnss/internal/ports/input"
)

// Services bundles the application services exposed over HTTP.
type Services struct {
	Catalog    input.Catalog
	Selector   input.Selector
	Health     input.HealthChecker
	Validation *application.ValidationService // optional
}

// Server wraps the HTTP server with application handlers.
type Server struct {
	server      *http.Server
	router      *mux.Router
	catalog     input.Catalog
	selector    input.Selector
	health      input.HealthChecker
	validation  *application.ValidationService
	metrics     *metrics.Collector
	metricsPath string
	logger      *slog.Logger
	config      config.ServerConfig
}

// NewServer creates a new HTTP server. A nil collector disables the
// metrics middleware and endpoint.
func NewServer(
	cfg config.ServerConfig,
	services Services,
	collector *metrics.Collector,
	metricsPath string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		catalog:     services.Catalog,
		selector:    services.Selector,
		health:      services.Health,
		validation:  services.Validation,
		metrics:     collector,
		metricsPath: metricsPath,
		logger:      logger,
		config:      cfg,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()
	// Long spellings such as "SPAN (AUS/NZ)" arrive with an escaped slash
	r.UseEncodedPath()

	// Add middleware
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	// Add CORS middleware if configured
	if s.config.CORS.Enabled() {
		r.Use(s.corsMiddleware)
	}

	// Health endpoints
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/live", s.handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReadiness).Methods(http.MethodGet)

	// API v1
	api := r.PathPrefix("/api/v1").Subrouter()

	// Identity endpoints
	api.HandleFunc("/constellations", s.handleListConstellations).Methods(http.MethodGet)
	api.HandleFunc("/constellations/{text}", s.handleGetConstellation).Methods(http.MethodGet)
	api.HandleFunc("/constellations/{text}/render", s.handleRenderConstellation).Methods(http.MethodGet)
	api.HandleFunc("/sv/{id}", s.handleGetSV).Methods(http.MethodGet)

	// SBAS database endpoints; "coverage" is registered before the slot route
	api.HandleFunc("/sbas", s.handleListSBAS).Methods(http.MethodGet)
	api.HandleFunc("/sbas/coverage", s.handleCoverage).Methods(http.MethodGet)
	api.HandleFunc("/sbas/{slot:[0-9]+}", s.handleGetSBAS).Methods(http.MethodGet)

	// Coverage selection
	api.HandleFunc("/select", s.handleSelect).Methods(http.MethodGet)

	// Validation endpoints (only if validation service is configured)
	if s.validation != nil {
		api.HandleFunc("/validate", s.handleValidate).Methods(http.MethodPost)
		api.HandleFunc("/validate", s.handleValidationReports).Methods(http.MethodGet)
	}

	// OpenAPI spec
	r.HandleFunc("/openapi.json", s.handleOpenAPI).Methods(http.MethodGet)

	if s.metrics != nil && s.metricsPath != "" {
		r.Handle(s.metricsPath, s.metrics.Handler()).Methods(http.MethodGet)
	}

	// Preflight requests must match a route for the CORS middleware to run
	if s.config.CORS.Enabled() {
		r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "No such endpoint")
	})

	return r
}

// Router returns the mux router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.config.Address())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs incoming requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recoveryMiddleware recovers from panics.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				s.writeError(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

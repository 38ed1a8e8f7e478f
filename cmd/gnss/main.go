// Package main provides the entry point for the gnss identity and SBAS
// coverage service.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobrunner/gnss/internal/app"
	"github.com/jobrunner/gnss/internal/config"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var (
	cfgFile      string
	outputFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gnss",
	Short: "gnss - GNSS identity and SBAS coverage service",
	Long: `gnss decodes GNSS constellation and satellite identifiers and selects
the satellite-based augmentation service (SBAS) covering a coordinate.

Without a subcommand it serves the REST API.

Features:
  - Constellation spellings (long, short, RINEX letter)
  - SV identifiers with SBAS slot resolution
  - Coverage selection against the bundled SBAS database
  - SQLite, JSON and GeoJSON export
  - Validation of candidate database files, optionally watched
  - Prometheus metrics`,
	SilenceUsage: true,
	RunE:         runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "gnss %s\n", version)
		fmt.Fprintf(w, "  Commit:     %s\n", commit)
		fmt.Fprintf(w, "  Build Date: %s\n", buildDate)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "json", "log format (json, text)")
	pf.StringVarP(&outputFormat, "output", "o", "text", "output format for commands (text, json, yaml)")
	pf.String("database-source", config.SourceEmbedded, "SBAS database source (embedded, file, sqlite)")
	pf.String("database-path", "", "SBAS database file for the file and sqlite sources")

	// Server flags
	rootCmd.Flags().String("host", "0.0.0.0", "server host")
	rootCmd.Flags().Int("port", 8080, "server port")
	rootCmd.Flags().StringSlice("cors", nil, "allowed CORS origins (e.g., https://example.com,*.sub.domain.tld)")
	rootCmd.Flags().Bool("metrics", true, "expose Prometheus metrics")
	rootCmd.Flags().Bool("watch", false, "validate candidate database files when they change")
	rootCmd.Flags().StringSlice("watch-path", nil, "directories or files to watch (default: ./data)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("database.source", pf.Lookup("database-source"))
	_ = viper.BindPFlag("database.path", pf.Lookup("database-path"))
	_ = viper.BindPFlag("server.host", rootCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.cors.allowed_origins", rootCmd.Flags().Lookup("cors"))
	_ = viper.BindPFlag("metrics.enabled", rootCmd.Flags().Lookup("metrics"))
	_ = viper.BindPFlag("watch.enabled", rootCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("watch.paths", rootCmd.Flags().Lookup("watch-path"))

	rootCmd.AddCommand(
		versionCmd,
		listCmd,
		parseCmd,
		renderCmd,
		svCmd,
		sbasCmd,
		selectCmd,
		exportCmd,
		validateCmd,
		cosparCmd,
		domesCmd,
	)
}

func initConfig() {
	config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting gnss",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"database_source", cfg.Database.Source,
		"watch", cfg.Watch.Enabled,
	)

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize application
	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	// Start server in background
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", cfg.Server.Address())
		if err := application.Start(ctx); err != nil {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		stop()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	logger.Info("shutting down server")
	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func setupLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

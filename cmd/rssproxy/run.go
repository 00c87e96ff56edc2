package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"humblerss/rssproxy/pkg/cli"
	"humblerss/rssproxy/pkg/config"
	"humblerss/rssproxy/pkg/fetch"
	"humblerss/rssproxy/pkg/journal"
	"humblerss/rssproxy/pkg/journal/retention"
	"humblerss/rssproxy/pkg/journal/storage"
	"humblerss/rssproxy/pkg/proxy/handlers"
	"humblerss/rssproxy/pkg/proxy/middleware"
	"humblerss/rssproxy/pkg/server"
	"humblerss/rssproxy/pkg/telemetry/health"
	"humblerss/rssproxy/pkg/telemetry/logging"
	"humblerss/rssproxy/pkg/telemetry/metrics"
	"humblerss/rssproxy/pkg/telemetry/tracing"
)

var runFlags struct {
	port     int
	threads  int
	timeout  int
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the RSS proxy server",
	Long: `Start the RSS proxy server with the specified configuration.

The config file may be the original JSON format

  {"port": 8080, "threads": 4, "timeout": 1000}

or YAML with the additional server, fetch, journal and telemetry sections.
Command-line flags override the file; values that are not positive are
ignored with a warning.

Examples:
  # Start with defaults
  rssproxy run

  # Start with a config file, four worker threads and a 2s fetch timeout
  rssproxy run --config config.json --threads 4 --timeout 2000

  # Validate config without starting the server
  rssproxy run --config config.yaml --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addServerFlags(runCmd)
}

// addServerFlags registers the server flags on cmd. The root command and
// run share them.
func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runFlags.port, "port", "p", 0, "server port")
	cmd.Flags().IntVarP(&runFlags.threads, "threads", "t", 0, "count of server worker threads")
	cmd.Flags().IntVar(&runFlags.timeout, "timeout", 0, "remote host timeout in milliseconds")
	cmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

// loadConfig reads the config file (or the defaults when none is given),
// applies environment and flag overrides and validates the result.
func loadConfig(flags *pflag.FlagSet) (*config.Config, []string, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, nil, cli.WrapConfigError(err)
	}

	var warnings []string
	override := func(name string, value int, dst *int) {
		if !flags.Changed(name) {
			return
		}
		if value <= 0 {
			warnings = append(warnings, fmt.Sprintf("ignoring --%s=%d: must be positive", name, value))
			return
		}
		*dst = value
	}
	override("port", runFlags.port, &cfg.Port)
	override("threads", runFlags.threads, &cfg.Threads)
	override("timeout", runFlags.timeout, &cfg.Timeout)

	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, cli.WrapConfigError(err)
	}
	return cfg, warnings, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, warnings, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	config.SetConfig(cfg)

	logger, err := logging.FromConfig(cfg.Telemetry.Logging)
	if err != nil {
		return cli.WrapConfigError(err)
	}
	slog.SetDefault(logger.Slog())
	for _, w := range warnings {
		logger.Warn(w)
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	printBanner(logger, cfg)

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(flushCtx); err != nil {
			logger.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	checker := health.New(2 * time.Second)
	observers := []fetch.Observer{collector}

	var store journal.Storage
	if cfg.Journal.Enabled {
		store, err = storage.Open(cfg.Journal, logger.Slog())
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open journal: %w", err))
		}
		defer store.Close()

		var redactor *logging.Redactor
		if cfg.Telemetry.Logging.RedactSecrets {
			redactor = logging.NewRedactor()
		}
		recorder := journal.NewRecorder(store, journal.RecorderConfig{
			AsyncBuffer:  cfg.Journal.AsyncBuffer,
			WriteTimeout: cfg.Journal.WriteTimeout,
			Redactor:     redactor,
			Metrics:      collector,
			Logger:       logger.Slog(),
		})
		// Deferred after store.Close so the queue drains first.
		defer recorder.Close()
		observers = append(observers, recorder)

		pruner := retention.NewPruner(store, retention.Config{
			RetentionDays: cfg.Journal.Retention.Days,
			PruneSchedule: cfg.Journal.Retention.PruneSchedule,
			MaxEntries:    cfg.Journal.Retention.MaxEntries,
		}, collector, logger.Slog())
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("Failed to start retention scheduler", "error", err)
		} else if next := scheduler.NextRun(); next != nil {
			logger.Debug("Journal retention scheduled", "next_run", next)
		}
		defer scheduler.Stop()

		checker.RegisterCheck("journal", store.Ping)
	}

	feed := handlers.NewFeedHandler(handlers.FeedConfig{
		Timeout: cfg.FetchTimeout(),
		Fetch: fetch.Options{
			MaxHeadBytes: cfg.Fetch.MaxHeadBytes,
			MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
			UserAgent:    cfg.Fetch.UserAgent,
			Observers:    observers,
			Tracer:       tracer.Trace(),
			Logger:       logger.Slog(),
		},
		Observer: collector,
		Logger:   logger.Slog(),
	})

	srv := server.New(cfg, middleware.Chain(feed,
		middleware.RecoveryMiddleware,
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware,
	), server.Options{
		Logger:     logger.Slog(),
		Observer:   collector,
		Tracer:     tracer.Trace(),
		OnShutdown: func() { checker.SetDraining(true) },
	})
	checker.RegisterCheck("listener", srv.Health)

	if err := srv.Listen(); err != nil {
		return cli.NewCommandError("run", err)
	}

	if cfg.Telemetry.Metrics.Enabled {
		telemetrySrv := newTelemetryServer(&cfg.Telemetry.Metrics, collector, checker)
		go func() {
			logger.Info("Telemetry endpoint listening", "address", telemetrySrv.Addr)
			if err := telemetrySrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Telemetry endpoint failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = telemetrySrv.Shutdown(shutdownCtx)
		}()
	}

	watchConfig(ctx, cmd.Flags(), feed, logger.Slog())

	if err := srv.Serve(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	logger.Info("Server stopped")
	return nil
}

// watchConfig pushes the fetch timeout of every reloaded config file into
// the handler. Reloads come from file changes and from SIGHUP. A --timeout
// flag pins the timeout and disables reloading it.
func watchConfig(ctx context.Context, flags *pflag.FlagSet, feed *handlers.FeedHandler, logger *slog.Logger) {
	if cfgFile == "" {
		return
	}
	if flags.Changed("timeout") && runFlags.timeout > 0 {
		logger.Debug("Fetch timeout pinned by --timeout, config reload disabled")
		return
	}

	apply := func(cfg *config.Config) {
		if old := feed.Timeout(); old != cfg.FetchTimeout() {
			feed.SetTimeout(cfg.FetchTimeout())
			logger.Info("Fetch timeout updated", "old_ms", old.Milliseconds(), "new_ms", cfg.Timeout)
		}
	}

	watcher, err := config.NewWatcher(cfgFile, 0, logger)
	if err != nil {
		logger.Warn("Config hot reload unavailable", "error", err)
	} else {
		go func() {
			if err := watcher.Watch(ctx, apply); err != nil {
				logger.Error("Config watcher stopped", "error", err)
			}
		}()
	}

	cli.NotifyReload(ctx, func() {
		if err := config.ReloadConfig(cfgFile); err != nil {
			logger.Error("Config reload failed, keeping previous configuration", "error", err)
			return
		}
		apply(config.GetConfig())
	})
}

// printBanner logs the effective settings at startup.
func printBanner(logger *logging.Logger, cfg *config.Config) {
	source := cfgFile
	if source == "" {
		source = "defaults"
	}
	logger.Info("rssproxy starting",
		"version", config.Version,
		"config", source,
		"port", cfg.Port,
		"threads", cfg.Threads,
		"timeout_ms", cfg.Timeout,
	)
	if cfg.Journal.Enabled {
		logger.Debug("Journal enabled", "backend", cfg.Journal.Backend, "driver", cfg.Journal.SQLite.Driver)
	}
	if cfg.Telemetry.Tracing.Enabled {
		logger.Debug("Tracing enabled", "endpoint", cfg.Telemetry.Tracing.Endpoint)
	}
}

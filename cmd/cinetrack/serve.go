package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/amaumene/cinetrack/internal/api"
	"github.com/amaumene/cinetrack/internal/config"
	"github.com/amaumene/cinetrack/internal/controllers"
	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/metrics"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/parser"
	"github.com/amaumene/cinetrack/internal/queue"
	"github.com/amaumene/cinetrack/internal/scheduler"
	"github.com/amaumene/cinetrack/internal/services/gemini"
	"github.com/amaumene/cinetrack/internal/source"
	"github.com/amaumene/cinetrack/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the library, run the enrichment queue and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting CineTrack")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")
	if cfg.GeminiAPIKey == "" {
		logger.Warn("No Gemini API key configured, lookups will fail")
	}

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Read the viewing log
	raw, err := source.Load(cfg.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to load viewing log: %w", err)
	}

	// Lookups run with this context, cancelled only at shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Initialize metrics and services
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	geminiClient, err := gemini.NewClient(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize gemini client: %w", err)
	}
	logger.WithField("model", cfg.GeminiModel).Info("Gemini client initialized")

	// 6. Initialize controllers
	lib := library.New()
	enrichCtrl := controllers.NewEnrichController(lib, geminiClient, m, logger)
	q := queue.New(ctx, enrichCtrl, cfg.RateLimitDelay(), logger)
	enrichCtrl.SetQueue(q)

	persistCtrl := controllers.NewPersistController(db, cfg.StorageKey, m, logger)
	persistCtrl.Attach(lib)

	p := parser.New(parser.WithDefaultYear(cfg.DefaultYear))
	syncCtrl := controllers.NewSyncController(db, cfg.StorageKey, p, lib, q, logger)
	searchCtrl := controllers.NewSearchController(lib, logger)
	backupCtrl := controllers.NewBackupController(db, lib, cfg.StorageKey, cfg.BackupRetention, m, logger)
	logger.Info("Controllers initialized")

	m.WatchQueue(reg, q)
	m.WatchLibrary(reg, lib)

	// 7. Build the library and start the enrichment queue
	if err := syncCtrl.Load(ctx, raw); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}
	defer func() {
		q.Stop()
		q.Wait()
		enrichCtrl.Wait()
	}()

	// 8. Initialize scheduler
	sched := scheduler.NewScheduler(q, backupCtrl, cfg.ProgressReportSchedule, cfg.BackupSchedule, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 9. Initialize HTTP server
	server := api.NewServer(cfg, api.Deps{
		Library:    lib,
		Queue:      q,
		SearchCtrl: searchCtrl,
		EnrichCtrl: enrichCtrl,
		Metrics:    m,
	}, logger)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 10. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("CineTrack is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		// No new lookups start once the queue is stopped. Lookups still
		// running are abandoned and stay unchecked.
		q.Stop()
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("CineTrack stopped")
	return nil
}

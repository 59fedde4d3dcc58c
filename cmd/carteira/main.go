package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/api"
	"carteira/internal/config"
	"carteira/internal/export"
	exportgoogle "carteira/internal/export/google"
	exportmemory "carteira/internal/export/memory"
	apphttp "carteira/internal/http"
	applog "carteira/internal/log"
	"carteira/internal/storage"
	"carteira/internal/store"
	"carteira/internal/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.Setup(os.Getenv("LOG_LEVEL"), applog.ComponentApp)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm-start from offline snapshots, then try the backend.
	stores := store.NewStores()
	worker.SeedStores(ctx, repo, stores)

	apiClient := api.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout)

	deps := apphttp.Deps{
		Refresher: apiClient,
		Outbox:    repo,
	}

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// The outbox still drains on the worker's schedule, so a
			// missing broker only delays sync.
			logger.Warn("Failed to initialize AMQP client, changes will sync on schedule only", "error", err)
		} else {
			defer amqpClient.Close()
			deps.Publisher = amqpClient
		}
	}

	var reports export.ReportWriter
	switch cfg.ReportBackend {
	case "sheets":
		sheetsClient, err := exportgoogle.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets report writer", "error", err)
			os.Exit(1)
		}
		reports = sheetsClient
		logger.Info("Report export enabled", "backend", "sheets")
	case "memory":
		reports = exportmemory.New()
		logger.Info("Report export enabled", "backend", "memory")
	}
	deps.Reports = reports

	if err := worker.RefreshAndSnapshot(ctx, stores, apiClient, repo); err != nil {
		logger.Warn("Initial refresh failed, running from snapshots", "error", err)
	}

	// Periodic refresh keeps the caches and snapshots warm.
	go func() {
		ticker := time.NewTicker(cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := worker.RefreshAndSnapshot(ctx, stores, apiClient, repo); err != nil {
					if errors.Is(err, store.ErrStaleRefresh) {
						logger.Debug("Refresh superseded by a local write")
						continue
					}
					logger.Warn("Periodic refresh failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, stores, apiClient, deps)
	srv.Handler = applog.Middleware(logger)(applog.ComponentMiddleware(applog.ComponentHTTP)(srv.Handler))
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting carteira gateway", "port", cfg.Port, "api", cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Gateway stopped gracefully")
}

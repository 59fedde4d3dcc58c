package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/api"
	"carteira/internal/config"
	"carteira/internal/export"
	exportgoogle "carteira/internal/export/google"
	applog "carteira/internal/log"
	"carteira/internal/storage"
	"carteira/internal/store"
	"carteira/internal/worker"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.Setup(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)

	logger.Info("Starting carteira-worker")

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

	apiClient := api.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout)
	syncWorker := worker.NewSyncWorker(repo, apiClient, cfg.SyncBatchSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Replay anything queued while the worker was down.
	if n, err := syncWorker.Drain(ctx); err != nil {
		logger.Error("Startup drain failed", "error", err)
	} else if n > 0 {
		logger.Info("Replayed queued mutations on startup", "count", n)
	}

	// Change events trigger an immediate replay of the referenced entry.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			err := amqpClient.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
				return syncWorker.HandleChangeMessage(ctx, msg)
			})
			if err != nil && err != context.Canceled {
				logger.Error("Change consumption failed", "error", err)
				cancel()
			}
		}()
	} else {
		logger.Info("AMQP disabled, draining on schedule only")
	}

	stores := store.NewStores()
	worker.SeedStores(ctx, repo, stores)

	var reports export.ReportWriter
	if cfg.ReportBackend == "sheets" {
		sheetsClient, err := exportgoogle.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets report writer", "error", err)
			os.Exit(1)
		}
		reports = sheetsClient
	}

	scheduler := cron.New()

	_, err = scheduler.AddFunc("@every "+cfg.RefreshInterval.String(), func() {
		if _, err := syncWorker.Drain(ctx); err != nil {
			logger.Warn("Scheduled drain failed", "error", err)
			return
		}
		if err := worker.RefreshAndSnapshot(ctx, stores, apiClient, repo); err != nil {
			logger.Warn("Scheduled refresh failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("Failed to schedule drain", "error", err)
		os.Exit(1)
	}

	if reports != nil {
		_, err = scheduler.AddFunc(cfg.ExportCron, func() {
			// Export the month that just closed.
			prev := time.Now().AddDate(0, -1, 0)
			report := export.BuildMonthlyReport(prev.Year(), int(prev.Month()),
				stores.Transactions.Snapshot(),
				stores.Categories.Snapshot())
			ref, err := reports.WriteMonthlyReport(ctx, report)
			if err != nil {
				logger.Error("Monthly report export failed",
					"year", prev.Year(),
					"month", int(prev.Month()),
					"error", err)
				return
			}
			logger.Info("Monthly report exported",
				"year", prev.Year(),
				"month", int(prev.Month()),
				"rows", len(report.Rows),
				"ref", ref)
		})
		if err != nil {
			logger.Error("Failed to schedule report export", "error", err, "cron", cfg.ExportCron)
			os.Exit(1)
		}
	}

	scheduler.Start()
	logger.Info("Worker running",
		"drain_every", cfg.RefreshInterval.String(),
		"batch_size", cfg.SyncBatchSize)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("Timed out waiting for scheduled jobs")
	}
	logger.Info("Worker stopped gracefully")
}

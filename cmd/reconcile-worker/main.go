package main

import (
	"context"
	"errors"
	"os"
	"time"

	"quantofalta/internal/amqp"
	"quantofalta/internal/cli"
	"quantofalta/internal/clock"
	"quantofalta/internal/export"
	gsheet "quantofalta/internal/export/google"
	mem "quantofalta/internal/export/memory"
	"quantofalta/internal/services"
	"quantofalta/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting reconcile-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized")
		}
	}

	// The worker exports its own passes directly, so it does not publish
	// month_closed events; it only consumes the ones the server publishes.
	service := services.NewLedgerService(sqliteRepo, nil, nil)

	openCtx, openCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := service.Open(openCtx); err != nil {
		openCancel()
		logger.Error("Failed to open ledger", "error", err)
		os.Exit(1)
	}
	openCancel()

	// Choose export backend (default: memory).
	var exporter export.SnapshotWriter
	switch cfg.ExportBackend {
	case "sheets":
		cliGS, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = cliGS
		logger.Info("Initialized Google Sheets exporter")
	default:
		exporter = mem.New()
		logger.Info("Initialized memory exporter")
	}

	w := worker.New(service, exporter, worker.Config{Interval: cfg.ReconcileInterval})

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Months reconciled by other processes arrive as month_closed events;
	// export those too so the spreadsheet does not depend on which process
	// crossed the month boundary first.
	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeMonthClosed(runCtx, func(msg *amqp.MonthClosedMessage) error {
				t, err := clock.ParseMonthKey(msg.Month)
				if err != nil {
					return err
				}
				// The event means another process just wrote the month;
				// reload before reading or the export misses its entries.
				if err := service.Refresh(runCtx); err != nil {
					return err
				}
				txs := service.MonthTransactions(t.Year(), int(t.Month()))
				return exporter.WriteTransactions(runCtx, msg.Month, txs)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("AMQP consumer stopped", "error", err)
			}
		}()
	}

	if err := w.Start(runCtx); err != nil {
		logger.Error("Failed to start reconcile worker", "error", err)
		os.Exit(1)
	}
	logger.Info("Reconcile worker running", "interval", cfg.ReconcileInterval, "sqlite_db", cfg.SQLiteDBPath)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := w.Stop(stopCtx); err != nil {
			logger.Error("Worker stop error", "error", err)
		}
	})

	cli.WaitForShutdown(ctx, done)
	logger.Info("Reconcile-worker shutdown complete")
}

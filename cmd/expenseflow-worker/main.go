package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expenseflow/internal/amqp"
	"expenseflow/internal/config"
	"expenseflow/internal/export/sheets"
	applog "expenseflow/internal/log"
	"expenseflow/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting expenseflow-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Google Sheets export is optional. Without a spreadsheet the worker
	// still drains the decision queue so messages do not pile up.
	var exporter worker.ApprovedAppender
	if cfg.SheetsSpreadsheetID != "" {
		exp, err := sheets.New(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName, cfg.SheetsCredentialsJSON)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", applog.FieldError, err)
			os.Exit(1)
		}
		exporter = exp
		logger.Info("Google Sheets exporter initialized",
			"spreadsheet_id", cfg.SheetsSpreadsheetID,
			"sheet", cfg.SheetsSheetName)
	} else {
		logger.Info("Google Sheets export disabled - no SHEETS_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(amqpClient, exporter)

	logger.Info("Consuming decision messages", "queue", cfg.AMQPQueue)
	if err := exportWorker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("Decision consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}

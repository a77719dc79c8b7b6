package main

import (
	"context"
	"errors"

	"gagyebu/internal/amqp"
	"gagyebu/internal/cli"
	applog "gagyebu/internal/log"
	gsheet "gagyebu/internal/sheets/google"
	"gagyebu/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting ledger-mirror-worker")

	if err := cfg.ValidateMirror(); err != nil {
		cli.Fatal(logger, "Mirror configuration validation failed", err)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	journal, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer func() {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close failed", applog.FieldError, err)
		}
	}()

	mirror := worker.NewJournalWorker(journal)

	logger.Info("Consuming ledger events",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	err = amqpClient.ConsumeLedgerEvents(applog.NewContext(ctx, logger), mirror.HandleLedgerEvent)

	synced, failed := mirror.Stats()
	logger.Info("Ledger mirror stopped", "synced", synced, "failed", failed)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		return
	}
	logger.Info("Ledger-mirror-worker shutdown complete")
}

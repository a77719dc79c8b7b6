package main

import (
	"context"
	"time"

	"gagyebu/internal/cli"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentRecurring)
	logger.Info("Starting recurring-worker")

	ctx, stop := cli.SignalContext()
	defer stop()

	res, err := cli.InitLedger(ctx, logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize ledger", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled, materialized entries will not reach the journal mirror")
	}

	scheduler := services.NewRecurringScheduler(res.Ledger.Recurring, services.SchedulerConfig{
		Interval:   cfg.RecurringProcessorInterval,
		RunOnStart: true,
	})
	logger.Info("Recurring scheduler configured",
		"interval", cfg.RecurringProcessorInterval,
		"backend", cfg.DataBackend,
		"timezone", cfg.Timezone)

	if err := scheduler.Start(applog.NewContext(ctx, logger)); err != nil {
		logger.Error("Failed to start recurring scheduler", applog.FieldError, err)
		return
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("Recurring scheduler did not stop in time", applog.FieldError, err)
		return
	}
	logger.Info("Recurring-worker shutdown complete")
}

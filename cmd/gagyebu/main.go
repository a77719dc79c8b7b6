package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"gagyebu/internal/cli"
	"gagyebu/internal/config"
	apphttp "gagyebu/internal/http"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		cli.Fatal(logger, "Server exited with error", err)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	res, err := cli.InitLedger(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()
	ledger := res.Ledger

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Entries:   ledger.Entries,
		Recurring: ledger.Recurring,
		Assets:    ledger.Assets,
		Catalog:   ledger.Catalog,
		Tax:       ledger.Tax,
		Budgets:   ledger.Budgets,
		Ready:     ledger.Ping,
		RateLimit: cfg.RateLimitPerMinute,
		Logger:    logger.WithComponent(applog.ComponentHTTP),
	})

	g, gctx := errgroup.WithContext(ctx)

	if cfg.SchedulerEmbedded {
		scheduler := services.NewRecurringScheduler(ledger.Recurring, services.SchedulerConfig{
			Interval:   cfg.RecurringProcessorInterval,
			RunOnStart: true,
		})
		if err := scheduler.Start(gctx); err != nil {
			_ = srv.Shutdown(context.Background())
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return scheduler.Stop(stopCtx)
		})
	}

	g.Go(func() error {
		logger.Info("Starting gagyebu server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"timezone", cfg.Timezone,
			"events", cfg.AMQPURL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		stats := srv.SecurityStats()
		logger.Info("Server security counters",
			"rate_limit_hits", stats.RateLimitHits,
			"suspicious_requests", stats.SuspiciousRequests)
		if err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

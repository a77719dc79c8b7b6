package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gagyebu/internal/amqp"
	"gagyebu/internal/config"
	"gagyebu/internal/core"
	"gagyebu/internal/services"
	"gagyebu/internal/storage"
	"gagyebu/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	clock  core.Clock
}

// NewFactory creates a new backend factory. A nil clock means the system
// clock in UTC.
func NewFactory(logger *slog.Logger, clock core.Clock) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &DefaultFactory{logger: logger, clock: clock}
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	var (
		store   storage.UnitOfWork
		cleanup []CleanupFunc
	)
	switch config.Type {
	case SQLiteBackend:
		if config.SQLiteDBPath == "" {
			return nil, fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		cleanup = append(cleanup, repo.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	// The publisher stays a nil interface when AMQP is off, never a typed nil.
	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = client
			cleanup = append(cleanup, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return &BackendResult{
		Ledger:  NewLedger(store, publisher, f.clock),
		Cleanup: combineCleanup(cleanup),
	}, nil
}

// NewLedger wires the services over one store.
func NewLedger(store storage.UnitOfWork, publisher services.EventPublisher, clock core.Clock) *Ledger {
	return &Ledger{
		Store:     store,
		Entries:   services.NewEntryService(store, publisher, clock),
		Recurring: services.NewRecurringService(store, publisher, clock),
		Assets:    services.NewAssetService(store),
		Catalog:   services.NewCatalogService(store),
		Tax:       services.NewTaxService(store, clock),
		Budgets:   services.NewBudgetService(store),
	}
}

// combineCleanup runs cleanups in reverse order of acquisition.
func combineCleanup(fns []CleanupFunc) CleanupFunc {
	return func() error {
		var errs []error
		for i := len(fns) - 1; i >= 0; i-- {
			if err := fns[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

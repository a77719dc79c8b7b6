package backend

import (
	"context"

	"gagyebu/internal/services"
	"gagyebu/internal/storage"
)

// Ledger bundles the services every entry point drives.
type Ledger struct {
	Store     storage.UnitOfWork
	Entries   *services.EntryService
	Recurring *services.RecurringService
	Assets    *services.AssetService
	Catalog   *services.CatalogService
	Tax       *services.TaxService
	Budgets   *services.BudgetService
}

// Ping opens and closes an empty unit of work to check the store is usable.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.Store.WithinTx(ctx, func(storage.Tx) error { return nil })
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ledger and the function releasing what it holds.
type BackendResult struct {
	Ledger  *Ledger
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Event publishing, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Package storage defines the repository ports of the ledger and their
// SQLite implementation.
package storage

import (
	"context"

	"gagyebu/internal/core"
)

// Ports for the persistence layer. Every lookup by id returns a
// *core.NotFoundError when the row does not exist.
type (
	AssetRepository interface {
		GetAsset(ctx context.Context, id int64) (core.Asset, error)
		ListAssets(ctx context.Context) ([]core.Asset, error)
		// DefaultAsset returns nil when no asset is flagged default.
		DefaultAsset(ctx context.Context) (*core.Asset, error)
		CreateAsset(ctx context.Context, a *core.Asset) error
		UpdateAsset(ctx context.Context, a core.Asset) error
		DeleteAsset(ctx context.Context, id int64) error
		// ClearDefaultAsset unflags the current default asset, if any.
		ClearDefaultAsset(ctx context.Context) error
	}

	CategoryRepository interface {
		GetCategory(ctx context.Context, id int64) (core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, c *core.Category) error
		UpdateCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id int64) error
		// CategoryInUse reports whether entries, templates or budgets reference the category.
		CategoryInUse(ctx context.Context, id int64) (bool, error)
	}

	CardRepository interface {
		GetCard(ctx context.Context, id int64) (core.Card, error)
		ListCards(ctx context.Context) ([]core.Card, error)
		CreateCard(ctx context.Context, c *core.Card) error
		// DeleteCard removes the card and clears it from entries and templates.
		DeleteCard(ctx context.Context, id int64) error
	}

	EntryRepository interface {
		GetEntry(ctx context.Context, id int64) (core.Entry, error)
		ListEntries(ctx context.Context, f EntryFilter) ([]core.Entry, error)
		CreateEntry(ctx context.Context, e *core.Entry) error
		UpdateEntry(ctx context.Context, e core.Entry) error
		DeleteEntry(ctx context.Context, id int64) error
		// ExistsEntryForTemplate reports whether an entry linked to the
		// template is dated within [from, to].
		ExistsEntryForTemplate(ctx context.Context, templateID int64, from, to core.Date) (bool, error)
		// ClearAssetReferences unlinks the asset from every entry that uses
		// it as source or destination.
		ClearAssetReferences(ctx context.Context, assetID int64) error
	}

	TemplateRepository interface {
		GetTemplate(ctx context.Context, id int64) (core.RecurringTemplate, error)
		ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error)
		CreateTemplate(ctx context.Context, rt *core.RecurringTemplate) error
		UpdateTemplate(ctx context.Context, rt core.RecurringTemplate) error
		// DeleteTemplate removes the template; materialized entries stay and
		// lose their template reference.
		DeleteTemplate(ctx context.Context, id int64) error
	}

	BudgetRepository interface {
		GetBudget(ctx context.Context, id int64) (core.Budget, error)
		// FindBudget returns nil when the category has no budget that month.
		FindBudget(ctx context.Context, year, month int, categoryID int64) (*core.Budget, error)
		// ListBudgets returns budgets whose core.MonthIndex lies in [from, to],
		// ordered by month then category.
		ListBudgets(ctx context.Context, from, to int) ([]core.Budget, error)
		CreateBudget(ctx context.Context, b *core.Budget) error
		UpdateBudget(ctx context.Context, b core.Budget) error
		DeleteBudget(ctx context.Context, id int64) error
	}

	// Tx is the set of repositories available inside one unit of work.
	Tx interface {
		AssetRepository
		CategoryRepository
		CardRepository
		EntryRepository
		TemplateRepository
		BudgetRepository
	}

	// UnitOfWork runs fn atomically: either everything fn wrote is committed
	// or nothing is. Units of work are serialized against each other.
	UnitOfWork interface {
		WithinTx(ctx context.Context, fn func(tx Tx) error) error
		Close() error
	}
)

// EntryFilter selects entries. Zero fields do not filter.
type EntryFilter struct {
	From core.Date // inclusive
	To   core.Date // inclusive
	// After keeps entries dated strictly after this day.
	After         core.Date
	CardID        *int64
	PaymentMethod core.PaymentMethod
	TemplateID    *int64
	Confirmed     *bool
}

// Match reports whether e passes the filter.
func (f EntryFilter) Match(e core.Entry) bool {
	if !f.From.IsZero() && e.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(f.To) {
		return false
	}
	if !f.After.IsZero() && !e.Date.After(f.After) {
		return false
	}
	if f.CardID != nil && !core.SameID(f.CardID, e.CardID) {
		return false
	}
	if f.PaymentMethod != "" && f.PaymentMethod != e.PaymentMethod {
		return false
	}
	if f.TemplateID != nil && !core.SameID(f.TemplateID, e.RecurringTemplateID) {
		return false
	}
	if f.Confirmed != nil && *f.Confirmed != e.IsConfirmed {
		return false
	}
	return true
}

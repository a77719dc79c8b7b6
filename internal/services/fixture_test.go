package services

import (
	"context"
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"gagyebu/internal/amqp"
	"gagyebu/internal/core"
	"gagyebu/internal/storage"
	"gagyebu/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	pub   *recordingPublisher
	clock core.FixedClock

	entries   *EntryService
	recurring *RecurringService
	assets    *AssetService
	catalog   *CatalogService
	tax       *TaxService
	budgets   *BudgetService
}

func newFixture(t *testing.T, today core.Date) *fixture {
	t.Helper()
	store := memory.New()
	pub := &recordingPublisher{}
	clock := core.FixedClock(today)
	return &fixture{
		t:         t,
		ctx:       context.Background(),
		store:     store,
		pub:       pub,
		clock:     clock,
		entries:   NewEntryService(store, pub, clock),
		recurring: NewRecurringService(store, pub, clock),
		assets:    NewAssetService(store),
		catalog:   NewCatalogService(store),
		tax:       NewTaxService(store, clock),
		budgets:   NewBudgetService(store),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) asset(t core.AssetType, name, balance string) core.Asset {
	f.t.Helper()
	a, err := f.assets.Create(f.ctx, AssetRequest{Type: t, Name: name, Balance: dec(balance)})
	assert.NoError(f.t, err)
	return a
}

func (f *fixture) defaultAsset(name, balance string) core.Asset {
	f.t.Helper()
	a := f.asset(core.Cash, name, balance)
	a, err := f.assets.SetDefault(f.ctx, a.ID)
	assert.NoError(f.t, err)
	return a
}

func (f *fixture) category(name string, t core.CategoryType) core.Category {
	f.t.Helper()
	c, err := f.catalog.CreateCategory(f.ctx, name, t)
	assert.NoError(f.t, err)
	return c
}

func (f *fixture) balance(id int64) string {
	f.t.Helper()
	a, err := f.assets.Get(f.ctx, id)
	assert.NoError(f.t, err)
	return a.Balance.String()
}

func (f *fixture) allEntries() []core.Entry {
	f.t.Helper()
	var out []core.Entry
	err := f.store.WithinTx(f.ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.ListEntries(f.ctx, storage.EntryFilter{})
		return err
	})
	assert.NoError(f.t, err)
	return out
}

func boolPtr(b bool) *bool { return &b }

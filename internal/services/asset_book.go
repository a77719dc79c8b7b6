package services

import (
	"context"
	"fmt"
	"log/slog"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	"gagyebu/internal/storage"
)

// assetBook loads each asset at most once per unit of work so that an entry
// whose source and destination coincide, or a reversal followed by a new
// application, mutates a single in-memory copy. flush writes the dirty ones.
type assetBook struct {
	tx    storage.Tx
	byID  map[int64]*core.Asset
	dirty map[int64]bool

	def       *core.Asset
	defLoaded bool
}

func newAssetBook(tx storage.Tx) *assetBook {
	return &assetBook{tx: tx, byID: map[int64]*core.Asset{}, dirty: map[int64]bool{}}
}

// get returns nil for a nil id and NotFound for an unknown one.
func (b *assetBook) get(ctx context.Context, id *int64) (*core.Asset, error) {
	if id == nil {
		return nil, nil
	}
	if a, ok := b.byID[*id]; ok {
		return a, nil
	}
	a, err := b.tx.GetAsset(ctx, *id)
	if err != nil {
		return nil, err
	}
	b.byID[a.ID] = &a
	return &a, nil
}

// lenient is get for references stored on existing rows: a dangling
// reference resolves to nil instead of failing.
func (b *assetBook) lenient(ctx context.Context, id *int64) (*core.Asset, error) {
	a, err := b.get(ctx, id)
	if err != nil && isNotFound(err) {
		return nil, nil
	}
	return a, err
}

func (b *assetBook) defaultAsset(ctx context.Context) (*core.Asset, error) {
	if b.defLoaded {
		return b.def, nil
	}
	def, err := b.tx.DefaultAsset(ctx)
	if err != nil {
		return nil, err
	}
	b.defLoaded = true
	if def == nil {
		return nil, nil
	}
	if cached, ok := b.byID[def.ID]; ok {
		b.def = cached
	} else {
		b.byID[def.ID] = def
		b.def = def
	}
	return b.def, nil
}

func (b *assetBook) apply(ctx context.Context, e core.Entry, eff ledger.Effect) {
	b.record(ctx, e, "apply", ledger.Apply(eff))
}

func (b *assetBook) reverse(ctx context.Context, e core.Entry, eff ledger.Effect) {
	b.record(ctx, e, "reverse", ledger.Reverse(eff))
}

func (b *assetBook) record(ctx context.Context, e core.Entry, op string, out ledger.Outcome) {
	if out.Skipped {
		slog.WarnContext(ctx, "Entry has no source asset, balances left unchanged",
			"entry_id", e.ID,
			"operation", op,
			"amount", e.Amount.String())
		return
	}
	for _, a := range out.Touched {
		b.dirty[a.ID] = true
	}
}

func (b *assetBook) flush(ctx context.Context) error {
	for id := range b.dirty {
		if err := b.tx.UpdateAsset(ctx, *b.byID[id]); err != nil {
			return fmt.Errorf("save asset %d balance: %w", id, err)
		}
	}
	return nil
}

// effectOf builds the balance effect of e as stored.
func effectOf(ctx context.Context, b *assetBook, e core.Entry, c core.Category) (ledger.Effect, error) {
	src, err := b.lenient(ctx, e.SourceAssetID)
	if err != nil {
		return ledger.Effect{}, err
	}
	dst, err := b.lenient(ctx, e.DestAssetID)
	if err != nil {
		return ledger.Effect{}, err
	}
	return ledger.Effect{Kind: core.EffectiveKind(c), Source: src, Dest: dst, Amount: e.Amount}, nil
}

func assetID(a *core.Asset) *int64 {
	if a == nil {
		return nil
	}
	return core.IDPtr(a.ID)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"gagyebu/internal/amqp"
	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	applog "gagyebu/internal/log"
	"gagyebu/internal/storage"
)

// EntryRequest is the input of EntryService.Create and Update. A nil
// IsConfirmed means "true" on create and "unchanged" on update.
type EntryRequest struct {
	Date          core.Date          `json:"date"`
	Amount        decimal.Decimal    `json:"amount"`
	Memo          string             `json:"memo"`
	PaymentMethod core.PaymentMethod `json:"paymentMethod"`
	CategoryID    int64              `json:"categoryId"`
	CardID        *int64             `json:"cardId"`
	AssetID       *int64             `json:"assetId"`
	ToAssetID     *int64             `json:"toAssetId"`
	IsConfirmed   *bool              `json:"isConfirmed"`
}

// EntryService runs the ledger entry lifecycle. Every operation is one unit
// of work: balance changes and the entry itself commit together.
type EntryService struct {
	uow       storage.UnitOfWork
	publisher EventPublisher
	clock     core.Clock
}

func NewEntryService(uow storage.UnitOfWork, publisher EventPublisher, clock core.Clock) *EntryService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &EntryService{uow: uow, publisher: publisher, clock: clock}
}

func isNotFound(err error) bool { return errors.Is(err, core.ErrNotFound) }

// resolved holds the references of a request, all looked up before any
// balance is touched.
type resolved struct {
	category core.Category
	card     *int64
	source   *core.Asset
	dest     *core.Asset
}

func resolveRefs(ctx context.Context, tx storage.Tx, b *assetBook, categoryID int64, pm core.PaymentMethod, cardID, srcID, dstID *int64) (resolved, error) {
	var r resolved

	cat, err := tx.GetCategory(ctx, categoryID)
	if err != nil {
		return r, err
	}
	r.category = cat

	if pm == core.PayCard && cardID != nil {
		card, err := tx.GetCard(ctx, *cardID)
		if err != nil {
			return r, err
		}
		r.card = core.IDPtr(card.ID)
	}

	explicit, err := b.get(ctx, srcID)
	if err != nil {
		return r, err
	}
	if r.dest, err = b.get(ctx, dstID); err != nil {
		return r, err
	}

	kind := core.EffectiveKind(cat)
	var def *core.Asset
	if explicit == nil && core.UsesDefaultAsset(kind) {
		if def, err = b.defaultAsset(ctx); err != nil {
			return r, err
		}
	}
	r.source = ledger.ResolveSource(kind, explicit, def)
	return r, nil
}

func validateRequest(req EntryRequest) error {
	e := core.Entry{Date: req.Date, Amount: req.Amount, Memo: req.Memo, PaymentMethod: req.PaymentMethod}
	return e.Validate()
}

func (s *EntryService) Create(ctx context.Context, req EntryRequest) (core.Entry, error) {
	if err := validateRequest(req); err != nil {
		return core.Entry{}, err
	}

	confirmed := true
	if req.IsConfirmed != nil {
		confirmed = *req.IsConfirmed
	}

	var entry core.Entry
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		b := newAssetBook(tx)
		r, err := resolveRefs(ctx, tx, b, req.CategoryID, req.PaymentMethod, req.CardID, req.AssetID, req.ToAssetID)
		if err != nil {
			return err
		}

		entry = core.Entry{
			Date:          req.Date,
			Amount:        req.Amount,
			Memo:          req.Memo,
			PaymentMethod: req.PaymentMethod,
			CategoryID:    r.category.ID,
			CardID:        r.card,
			SourceAssetID: assetID(r.source),
			DestAssetID:   assetID(r.dest),
			IsConfirmed:   confirmed,
		}
		if err := tx.CreateEntry(ctx, &entry); err != nil {
			return err
		}
		if confirmed {
			b.apply(ctx, entry, ledger.Effect{
				Kind: core.EffectiveKind(r.category), Source: r.source, Dest: r.dest, Amount: entry.Amount,
			})
		}
		return b.flush(ctx)
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry created", applog.NewFields().WithEntry(entry).ToSlice()...)
	publish(ctx, s.publisher, amqp.NewEntryEvent(amqp.EntryCreated, entry))
	return entry, nil
}

// Update replaces the entry. A confirmed entry has its old effect reversed
// from the stored snapshot before the new one is applied; the template link
// is kept.
func (s *EntryService) Update(ctx context.Context, id int64, req EntryRequest) (core.Entry, error) {
	if err := validateRequest(req); err != nil {
		return core.Entry{}, err
	}

	var entry core.Entry
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		old, err := tx.GetEntry(ctx, id)
		if err != nil {
			return err
		}

		b := newAssetBook(tx)
		r, err := resolveRefs(ctx, tx, b, req.CategoryID, req.PaymentMethod, req.CardID, req.AssetID, req.ToAssetID)
		if err != nil {
			return err
		}

		if old.IsConfirmed {
			oldCat, err := tx.GetCategory(ctx, old.CategoryID)
			if err != nil {
				return err
			}
			eff, err := effectOf(ctx, b, old, oldCat)
			if err != nil {
				return err
			}
			b.reverse(ctx, old, eff)
		}

		confirmed := old.IsConfirmed
		if req.IsConfirmed != nil {
			confirmed = *req.IsConfirmed
		}

		entry = core.Entry{
			ID:                  old.ID,
			Date:                req.Date,
			Amount:              req.Amount,
			Memo:                req.Memo,
			PaymentMethod:       req.PaymentMethod,
			CategoryID:          r.category.ID,
			CardID:              r.card,
			SourceAssetID:       assetID(r.source),
			DestAssetID:         assetID(r.dest),
			RecurringTemplateID: old.RecurringTemplateID,
			IsConfirmed:         confirmed,
		}
		if confirmed {
			b.apply(ctx, entry, ledger.Effect{
				Kind: core.EffectiveKind(r.category), Source: r.source, Dest: r.dest, Amount: entry.Amount,
			})
		}
		if err := tx.UpdateEntry(ctx, entry); err != nil {
			return err
		}
		return b.flush(ctx)
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("update entry %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Entry updated", "id", entry.ID, "confirmed", entry.IsConfirmed)
	publish(ctx, s.publisher, amqp.NewEntryEvent(amqp.EntryUpdated, entry))
	return entry, nil
}

// Confirm marks a planned entry as happened and applies its effect. An
// already confirmed entry is returned unchanged.
func (s *EntryService) Confirm(ctx context.Context, id int64) (core.Entry, error) {
	var (
		entry   core.Entry
		changed bool
	)
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		if entry, err = tx.GetEntry(ctx, id); err != nil {
			return err
		}
		if entry.IsConfirmed {
			return nil
		}

		cat, err := tx.GetCategory(ctx, entry.CategoryID)
		if err != nil {
			return err
		}
		b := newAssetBook(tx)
		eff, err := effectOf(ctx, b, entry, cat)
		if err != nil {
			return err
		}

		entry.IsConfirmed = true
		changed = true
		b.apply(ctx, entry, eff)
		if err := tx.UpdateEntry(ctx, entry); err != nil {
			return err
		}
		return b.flush(ctx)
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("confirm entry %d: %w", id, err)
	}

	if changed {
		slog.InfoContext(ctx, "Entry confirmed", applog.NewFields().WithEntry(entry).WithOperation(applog.OpConfirm).ToSlice()...)
		publish(ctx, s.publisher, amqp.NewEntryEvent(amqp.EntryConfirmed, entry))
	}
	return entry, nil
}

func (s *EntryService) Delete(ctx context.Context, id int64) error {
	var old core.Entry
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		if old, err = tx.GetEntry(ctx, id); err != nil {
			return err
		}

		b := newAssetBook(tx)
		if old.IsConfirmed {
			cat, err := tx.GetCategory(ctx, old.CategoryID)
			if err != nil {
				return err
			}
			eff, err := effectOf(ctx, b, old, cat)
			if err != nil {
				return err
			}
			b.reverse(ctx, old, eff)
		}
		if err := tx.DeleteEntry(ctx, id); err != nil {
			return err
		}
		return b.flush(ctx)
	})
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Entry deleted", "id", id)
	publish(ctx, s.publisher, amqp.NewEntryEvent(amqp.EntryDeleted, old))
	return nil
}

func (s *EntryService) Get(ctx context.Context, id int64) (core.Entry, error) {
	var e core.Entry
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		e, err = tx.GetEntry(ctx, id)
		return err
	})
	return e, err
}

func (s *EntryService) list(ctx context.Context, f storage.EntryFilter) ([]core.Entry, error) {
	var out []core.Entry
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.ListEntries(ctx, f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

// List returns entries dated within [from, to]; zero bounds are open.
func (s *EntryService) List(ctx context.Context, from, to core.Date) ([]core.Entry, error) {
	return s.list(ctx, storage.EntryFilter{From: from, To: to})
}

// ListPlanned returns unconfirmed entries dated after today.
func (s *EntryService) ListPlanned(ctx context.Context) ([]core.Entry, error) {
	unconfirmed := false
	return s.list(ctx, storage.EntryFilter{After: s.clock.Today(), Confirmed: &unconfirmed})
}

func (s *EntryService) ListByCard(ctx context.Context, cardID int64, from, to core.Date) ([]core.Entry, error) {
	return s.list(ctx, storage.EntryFilter{CardID: &cardID, From: from, To: to})
}

func (s *EntryService) ListByPaymentMethod(ctx context.Context, pm core.PaymentMethod, from, to core.Date) ([]core.Entry, error) {
	if !pm.Valid() {
		return nil, &core.ValidationError{Field: "paymentMethod", Err: core.ErrInvalidPaymentMethod}
	}
	return s.list(ctx, storage.EntryFilter{PaymentMethod: pm, From: from, To: to})
}

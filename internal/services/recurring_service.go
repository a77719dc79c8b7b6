package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"gagyebu/internal/amqp"
	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	"gagyebu/internal/storage"
)

// TemplateRequest is the input of RecurringService.Create and Update.
type TemplateRequest struct {
	Name          string             `json:"name"`
	Amount        decimal.Decimal    `json:"amount"`
	DayOfMonth    int                `json:"dayOfMonth"`
	PaymentMethod core.PaymentMethod `json:"paymentMethod"`
	CardID        *int64             `json:"cardId"`
	CategoryID    int64              `json:"categoryId"`
	AssetID       *int64             `json:"assetId"`
	ToAssetID     *int64             `json:"toAssetId"`
	StartDate     core.Date          `json:"startDate"`
	EndDate       core.Date          `json:"endDate"`
}

// RecurringService owns recurring templates and turns them into at most one
// entry per template and calendar month.
type RecurringService struct {
	uow       storage.UnitOfWork
	publisher EventPublisher
	clock     core.Clock

	templates *keyedMutex
	passes    singleflight.Group
}

func NewRecurringService(uow storage.UnitOfWork, publisher EventPublisher, clock core.Clock) *RecurringService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &RecurringService{
		uow:       uow,
		publisher: publisher,
		clock:     clock,
		templates: newKeyedMutex(),
	}
}

// buildTemplate validates req and checks that everything it references exists.
func buildTemplate(ctx context.Context, tx storage.Tx, req TemplateRequest) (core.RecurringTemplate, error) {
	rt := core.RecurringTemplate{
		Name:          req.Name,
		Amount:        req.Amount,
		DayOfMonth:    req.DayOfMonth,
		PaymentMethod: req.PaymentMethod,
		CategoryID:    req.CategoryID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}
	if err := rt.Validate(); err != nil {
		return rt, err
	}
	if _, err := tx.GetCategory(ctx, req.CategoryID); err != nil {
		return rt, err
	}
	if req.PaymentMethod == core.PayCard && req.CardID != nil {
		if _, err := tx.GetCard(ctx, *req.CardID); err != nil {
			return rt, err
		}
		rt.CardID = core.IDPtr(*req.CardID)
	}
	for _, ref := range []struct {
		id  *int64
		dst **int64
	}{{req.AssetID, &rt.SourceAssetID}, {req.ToAssetID, &rt.DestAssetID}} {
		if ref.id == nil {
			continue
		}
		if _, err := tx.GetAsset(ctx, *ref.id); err != nil {
			return rt, err
		}
		*ref.dst = core.IDPtr(*ref.id)
	}
	return rt, nil
}

// Create stores a template. Entries are only produced by an apply pass.
func (s *RecurringService) Create(ctx context.Context, req TemplateRequest) (core.RecurringTemplate, error) {
	var rt core.RecurringTemplate
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		if rt, err = buildTemplate(ctx, tx, req); err != nil {
			return err
		}
		return tx.CreateTemplate(ctx, &rt)
	})
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("create recurring template: %w", err)
	}
	slog.InfoContext(ctx, "Recurring template created", "id", rt.ID, "name", rt.Name, "day", rt.DayOfMonth)
	return rt, nil
}

// Update edits the template and carries the change over to its unconfirmed
// entries of the current month. Confirmed entries and other months stay as
// they are.
func (s *RecurringService) Update(ctx context.Context, id int64, req TemplateRequest) (core.RecurringTemplate, error) {
	unlock := s.templates.Lock(id)
	defer unlock()

	today := s.clock.Today()
	var (
		rt      core.RecurringTemplate
		touched int
	)
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetTemplate(ctx, id); err != nil {
			return err
		}
		var err error
		if rt, err = buildTemplate(ctx, tx, req); err != nil {
			return err
		}
		rt.ID = id
		if err := tx.UpdateTemplate(ctx, rt); err != nil {
			return err
		}

		unconfirmed := false
		pending, err := tx.ListEntries(ctx, storage.EntryFilter{
			From:       today.MonthStart(),
			To:         today.MonthEnd(),
			TemplateID: &id,
			Confirmed:  &unconfirmed,
		})
		if err != nil {
			return err
		}
		date := core.ClampedDate(today.Year(), today.Month(), rt.DayOfMonth)
		for _, e := range pending {
			e.Date = date
			e.Amount = rt.Amount
			e.Memo = rt.MaterializedMemo()
			e.PaymentMethod = rt.PaymentMethod
			e.CategoryID = rt.CategoryID
			e.CardID = rt.CardID
			if err := tx.UpdateEntry(ctx, e); err != nil {
				return err
			}
			touched++
		}
		return nil
	})
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("update recurring template %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Recurring template updated", "id", id, "pending_entries_updated", touched)
	return rt, nil
}

// Delete removes the template. Entries it produced stay in the ledger.
func (s *RecurringService) Delete(ctx context.Context, id int64) error {
	unlock := s.templates.Lock(id)
	defer unlock()

	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		return tx.DeleteTemplate(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete recurring template %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Recurring template deleted", "id", id)
	return nil
}

func (s *RecurringService) Get(ctx context.Context, id int64) (core.RecurringTemplate, error) {
	var rt core.RecurringTemplate
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		rt, err = tx.GetTemplate(ctx, id)
		return err
	})
	return rt, err
}

func (s *RecurringService) List(ctx context.Context) ([]core.RecurringTemplate, error) {
	var out []core.RecurringTemplate
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.ListTemplates(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	return out, nil
}

// step is the outcome of one template in a pass.
type step int

const (
	stepApplied step = iota
	stepExpired
	stepNotStarted
	stepAlreadyApplied
)

// process runs the per-template rules for today in one unit of work:
// expiry first, then start date, then the once-per-month check.
func (s *RecurringService) process(ctx context.Context, id int64, today core.Date) (step, *core.Entry, error) {
	unlock := s.templates.Lock(id)
	defer unlock()

	var (
		result  step
		created *core.Entry
	)
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		rt, err := tx.GetTemplate(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case rt.Expired(today):
			result = stepExpired
			return tx.DeleteTemplate(ctx, id)
		case rt.NotStarted(today):
			result = stepNotStarted
			return nil
		}

		exists, err := tx.ExistsEntryForTemplate(ctx, id, today.MonthStart(), today.MonthEnd())
		if err != nil {
			return err
		}
		if exists {
			result = stepAlreadyApplied
			return nil
		}

		e, err := materialize(ctx, tx, rt, today)
		if err != nil {
			return err
		}
		result, created = stepApplied, &e
		return nil
	})
	return result, created, err
}

// materialize creates the template's entry for today's month and applies it
// when its day has already come.
func materialize(ctx context.Context, tx storage.Tx, rt core.RecurringTemplate, today core.Date) (core.Entry, error) {
	cat, err := tx.GetCategory(ctx, rt.CategoryID)
	if err != nil {
		return core.Entry{}, err
	}

	b := newAssetBook(tx)
	explicit, err := b.lenient(ctx, rt.SourceAssetID)
	if err != nil {
		return core.Entry{}, err
	}
	dest, err := b.lenient(ctx, rt.DestAssetID)
	if err != nil {
		return core.Entry{}, err
	}
	kind := core.EffectiveKind(cat)
	var def *core.Asset
	if explicit == nil && core.UsesDefaultAsset(kind) {
		if def, err = b.defaultAsset(ctx); err != nil {
			return core.Entry{}, err
		}
	}
	source := ledger.ResolveSource(kind, explicit, def)

	date := core.ClampedDate(today.Year(), today.Month(), rt.DayOfMonth)
	e := core.Entry{
		Date:                date,
		Amount:              rt.Amount,
		Memo:                rt.MaterializedMemo(),
		PaymentMethod:       rt.PaymentMethod,
		CategoryID:          rt.CategoryID,
		CardID:              rt.CardID,
		SourceAssetID:       assetID(source),
		DestAssetID:         assetID(dest),
		RecurringTemplateID: core.IDPtr(rt.ID),
		IsConfirmed:         !date.After(today),
	}
	if err := tx.CreateEntry(ctx, &e); err != nil {
		return core.Entry{}, err
	}
	if e.IsConfirmed {
		b.apply(ctx, e, ledger.Effect{Kind: kind, Source: source, Dest: dest, Amount: e.Amount})
	}
	if err := b.flush(ctx); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

// ApplyOne materializes a single template for the current month. An expired
// template is deleted and reported as {0, 1} together with
// core.ErrTemplateExpired.
func (s *RecurringService) ApplyOne(ctx context.Context, id int64) (core.ApplySummary, error) {
	today := s.clock.Today()
	result, created, err := s.process(ctx, id, today)
	if err != nil {
		return core.ApplySummary{}, fmt.Errorf("apply recurring template %d: %w", id, err)
	}

	switch result {
	case stepExpired:
		summary := core.ApplySummary{ExpiredDeletedCount: 1}
		slog.InfoContext(ctx, "Recurring template expired and deleted", "id", id)
		publish(ctx, s.publisher, amqp.NewRecurringEvent(amqp.RecurringExpired, id, summary))
		return summary, core.ErrTemplateExpired
	case stepNotStarted:
		return core.ApplySummary{}, core.ErrTemplateNotStarted
	case stepAlreadyApplied:
		return core.ApplySummary{}, core.ErrTemplateAlreadyApplied
	}

	summary := core.ApplySummary{AppliedCount: 1}
	slog.InfoContext(ctx, "Recurring template applied",
		"id", id,
		"entry_id", created.ID,
		"date", created.Date.String(),
		"confirmed", created.IsConfirmed)
	publish(ctx, s.publisher, amqp.NewEntryEvent(amqp.EntryCreated, *created))
	publish(ctx, s.publisher, amqp.NewRecurringEvent(amqp.RecurringApplied, id, summary))
	return summary, nil
}

// ApplyAll runs a pass over every template for the current month. Each
// template is its own unit of work: a failing template is logged and
// reported in the returned error without undoing the others. Concurrent
// calls for the same month share one pass and its result.
func (s *RecurringService) ApplyAll(ctx context.Context) (core.ApplySummary, error) {
	today := s.clock.Today()
	key := today.Format("2006-01")

	// The pass is shared with every joined caller, so one caller going away
	// must not cancel it for the rest.
	passCtx := context.WithoutCancel(ctx)
	v, err, shared := s.passes.Do(key, func() (any, error) {
		return s.applyAll(passCtx, today)
	})
	if shared {
		slog.DebugContext(ctx, "Joined an in-flight recurring pass", "month", key)
	}
	summary, _ := v.(core.ApplySummary)
	return summary, err
}

func (s *RecurringService) applyAll(ctx context.Context, today core.Date) (core.ApplySummary, error) {
	templates, err := s.List(ctx)
	if err != nil {
		return core.ApplySummary{}, err
	}

	slog.InfoContext(ctx, "Processing recurring templates",
		"total", len(templates),
		"processing_date", today.String())

	var (
		summary core.ApplySummary
		errs    []error
	)
	for _, rt := range templates {
		result, created, err := s.process(ctx, rt.ID, today)
		if err != nil {
			if isNotFound(err) {
				// deleted since the listing
				continue
			}
			slog.ErrorContext(ctx, "Failed to apply recurring template",
				"template_id", rt.ID,
				"name", rt.Name,
				"error", err)
			errs = append(errs, fmt.Errorf("template %d: %w", rt.ID, err))
			continue
		}
		switch result {
		case stepExpired:
			summary.ExpiredDeletedCount++
			publish(ctx, s.publisher, amqp.NewRecurringEvent(amqp.RecurringExpired, rt.ID, core.ApplySummary{ExpiredDeletedCount: 1}))
		case stepApplied:
			summary.AppliedCount++
			publish(ctx, s.publisher, amqp.NewEntryEvent(amqp.EntryCreated, *created))
		}
	}

	slog.InfoContext(ctx, "Recurring template processing complete",
		"applied", summary.AppliedCount,
		"expired_deleted", summary.ExpiredDeletedCount,
		"failed", len(errs))

	if summary.AppliedCount > 0 {
		publish(ctx, s.publisher, amqp.NewRecurringEvent(amqp.RecurringApplied, 0, summary))
	}
	if len(errs) > 0 {
		return summary, fmt.Errorf("recurring pass: %w", errors.Join(errs...))
	}
	return summary, nil
}

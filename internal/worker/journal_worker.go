package worker

import (
	"context"
	"fmt"
	"sync"

	"gagyebu/internal/amqp"
	applog "gagyebu/internal/log"
	"gagyebu/internal/sheets"
)

// dedupWindow bounds the set of message ids remembered for redelivery checks.
const dedupWindow = 1024

// JournalWorker mirrors ledger events into the spreadsheet journal, one row
// per event.
type JournalWorker struct {
	journal sheets.JournalWriter

	mu     sync.Mutex
	seen   map[string]struct{}
	order  []string
	synced int64
	failed int64
}

func NewJournalWorker(journal sheets.JournalWriter) *JournalWorker {
	return &JournalWorker{
		journal: journal,
		seen:    make(map[string]struct{}, dedupWindow),
	}
}

// HandleLedgerEvent processes one event from AMQP. A returned error makes
// the consumer requeue the delivery.
func (w *JournalWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	logger := applog.FromContext(ctx)
	fields := applog.NewFields().WithEvent(ev.MessageID, string(ev.Type)).WithOperation(applog.OpMirror)
	logger.DebugContext(ctx, "Processing ledger event", fields.ToSlice()...)

	if w.alreadySynced(ev.MessageID) {
		logger.InfoContext(ctx, "Skipping redelivered ledger event", fields.ToSlice()...)
		return nil
	}

	row := JournalRowFromEvent(ev)
	ref, err := w.journal.Append(ctx, row)
	if err != nil {
		w.mu.Lock()
		w.failed++
		w.mu.Unlock()
		logger.LogError(ctx, "Failed to mirror ledger event", err, applog.OpMirror, fields)
		return fmt.Errorf("append to journal: %w", err)
	}

	w.markSynced(ev.MessageID)

	fields[applog.FieldEntryID] = row.EntryID
	fields[applog.FieldSheetsRef] = ref
	logger.InfoContext(ctx, "Successfully mirrored ledger event", fields.ToSlice()...)
	return nil
}

// Stats returns how many events were mirrored and how many failed.
func (w *JournalWorker) Stats() (synced, failed int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.synced, w.failed
}

func (w *JournalWorker) alreadySynced(id string) bool {
	if id == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.seen[id]
	return ok
}

func (w *JournalWorker) markSynced(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.synced++
	if id == "" {
		return
	}
	w.seen[id] = struct{}{}
	w.order = append(w.order, id)
	if len(w.order) > dedupWindow {
		delete(w.seen, w.order[0])
		w.order = w.order[1:]
	}
}

// JournalRowFromEvent flattens an event into a journal row.
func JournalRowFromEvent(ev *amqp.LedgerEvent) sheets.JournalRow {
	row := sheets.JournalRow{
		MessageID:  ev.MessageID,
		OccurredAt: ev.OccurredAt,
		EventType:  string(ev.Type),
		TemplateID: ev.TemplateID,
	}
	if e := ev.Entry; e != nil {
		row.EntryID = e.ID
		row.Date = e.Date.String()
		row.Amount = e.Amount.String()
		row.Memo = e.Memo
		row.PaymentMethod = string(e.PaymentMethod)
		row.CategoryID = e.CategoryID
		row.SourceAssetID = deref(e.SourceAssetID)
		row.DestAssetID = deref(e.DestAssetID)
		row.Confirmed = e.IsConfirmed
		if row.TemplateID == 0 {
			row.TemplateID = deref(e.RecurringTemplateID)
		}
	}
	if s := ev.Summary; s != nil {
		row.Applied = s.AppliedCount
		row.Expired = s.ExpiredDeletedCount
	}
	return row
}

func deref(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

package sheets

import (
	"context"
	"errors"
	"time"
)

// JournalRow is one line of the spreadsheet journal. Amount is kept as the
// decimal string so the sheet never sees a float.
type JournalRow struct {
	MessageID     string
	OccurredAt    time.Time
	EventType     string
	EntryID       int64
	Date          string
	Amount        string
	Memo          string
	PaymentMethod string
	CategoryID    int64
	SourceAssetID int64
	DestAssetID   int64
	TemplateID    int64
	Confirmed     bool
	Applied       int
	Expired       int
}

var ErrEmptyEventType = errors.New("journal row without event type")

func (r JournalRow) Validate() error {
	if r.EventType == "" {
		return ErrEmptyEventType
	}
	if r.OccurredAt.IsZero() {
		return errors.New("journal row without timestamp")
	}
	return nil
}

// Values returns the row as spreadsheet cells, A through O.
func (r JournalRow) Values() []any {
	return []any{
		r.OccurredAt.Format(time.RFC3339),
		r.EventType,
		r.MessageID,
		zeroBlank(r.EntryID),
		r.Date,
		r.Amount,
		r.Memo,
		r.PaymentMethod,
		zeroBlank(r.CategoryID),
		zeroBlank(r.SourceAssetID),
		zeroBlank(r.DestAssetID),
		zeroBlank(r.TemplateID),
		r.Confirmed,
		r.Applied,
		r.Expired,
	}
}

func zeroBlank(id int64) any {
	if id == 0 {
		return ""
	}
	return id
}

// Ports for outbound adapters.
type (
	JournalWriter interface {
		// Append adds one row and returns a reference to where it landed.
		Append(ctx context.Context, row JournalRow) (rowRef string, err error)
	}
)

package memory

import (
	"context"
	"fmt"
	"sync"

	"gagyebu/internal/sheets"
)

// Journal keeps appended rows in process. Used when no spreadsheet is
// configured and in tests.
type Journal struct {
	mu   sync.Mutex
	rows []sheets.JournalRow
}

var _ sheets.JournalWriter = (*Journal)(nil)

func New() *Journal { return &Journal{} }

// Append stores the row and returns a synthetic row reference.
func (j *Journal) Append(_ context.Context, row sheets.JournalRow) (string, error) {
	if err := row.Validate(); err != nil {
		return "", err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rows = append(j.rows, row)
	return fmt.Sprintf("mem:%d", len(j.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (j *Journal) Rows() []sheets.JournalRow {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]sheets.JournalRow(nil), j.rows...)
}

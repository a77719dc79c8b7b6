package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"gagyebu/internal/sheets"
)

func TestJournal_Append(t *testing.T) {
	j := New()
	ctx := context.Background()

	ref, err := j.Append(ctx, sheets.JournalRow{EventType: "entry.created", OccurredAt: time.Now(), Amount: "100"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	_, err = j.Append(ctx, sheets.JournalRow{OccurredAt: time.Now()})
	if !errors.Is(err, sheets.ErrEmptyEventType) {
		t.Errorf("expected ErrEmptyEventType, got %v", err)
	}

	rows := j.Rows()
	if len(rows) != 1 || rows[0].Amount != "100" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	rows[0].Amount = "mutated"
	if j.Rows()[0].Amount != "100" {
		t.Error("Rows should return a copy")
	}
}

func TestJournalRow_Values(t *testing.T) {
	row := sheets.JournalRow{
		EventType:  "entry.created",
		OccurredAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		EntryID:    5,
		Amount:     "12.50",
	}
	v := row.Values()
	if len(v) != 15 {
		t.Fatalf("expected 15 cells, got %d", len(v))
	}
	if v[0] != "2024-03-10T09:00:00Z" {
		t.Errorf("timestamp cell = %v", v[0])
	}
	if v[3] != int64(5) {
		t.Errorf("entry id cell = %v", v[3])
	}
	if v[9] != "" {
		t.Errorf("absent source asset should be blank, got %v", v[9])
	}
}

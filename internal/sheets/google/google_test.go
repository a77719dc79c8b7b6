package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ports "gagyebu/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet"})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(keyFile, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name    string
		inline  string
		file    string
		want    string
		wantErr string
	}{
		{name: "inline wins", inline: `{"inline":true}`, file: keyFile, want: `{"inline":true}`},
		{name: "file", file: keyFile, want: `{"type":"service_account"}`},
		{name: "missing file", file: filepath.Join(dir, "nope.json"), wantErr: "read service account file"},
		{name: "nothing", wantErr: "missing service account credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadCredentials(ctx, tt.inline, tt.file)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("loadCredentials() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadCredentials() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("loadCredentials() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_AppendValidatesBeforeCalling(t *testing.T) {
	c := &Client{spreadsheetID: "test", journalBase: "Journal"} // svc is nil

	_, err := c.Append(context.Background(), ports.JournalRow{OccurredAt: time.Now()})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = c.Append(context.Background(), ports.JournalRow{EventType: "entry.created", OccurredAt: time.Now()})
	if err == nil || err.Error() != "sheets service not initialized" {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		baseName string
		year     int
		expected string
	}{
		{"Journal", 2025, "2025 Journal"},
		{"가계부", 2024, "2024 가계부"},
		{"", 2023, ""},
		{"Test Sheet", 2022, "2022 Test Sheet"},
		{"2025 Already Prefixed", 2024, "2025 Already Prefixed"},
	}

	for _, tt := range tests {
		got := yearPrefixedName(tt.baseName, tt.year)
		if got != tt.expected {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q",
				tt.baseName, tt.year, got, tt.expected)
		}
	}
}

func TestClient_SheetForUsesEventYear(t *testing.T) {
	c := &Client{journalBase: "Journal"}
	row := ports.JournalRow{OccurredAt: time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)}
	if got := c.sheetFor(row); got != "2023 Journal" {
		t.Errorf("sheetFor() = %q, want 2023 Journal", got)
	}
}

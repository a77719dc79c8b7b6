package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gagyebu/internal/config"
	"gagyebu/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	if err == nil {
		t.Fatal("expected error for nil config")
	}

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", AMQPURL: "amqp://h/"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.AMQPURL != "amqp://h/" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	clock := core.FixedClock(core.NewDate(2024, 3, 10))
	f := NewFactory(nil, clock)

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "memory", config: Config{Type: MemoryBackend}},
		{name: "sqlite", config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db")}},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: true},
		{name: "unknown", config: Config{Type: "sheets"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer func() {
				if err := res.Cleanup(); err != nil {
					t.Errorf("Cleanup: %v", err)
				}
			}()

			if err := res.Ledger.Ping(ctx); err != nil {
				t.Fatalf("Ping: %v", err)
			}
			cat, err := res.Ledger.Catalog.CreateCategory(ctx, "식비", core.Expense)
			if err != nil {
				t.Fatalf("CreateCategory: %v", err)
			}
			if _, err := res.Ledger.Recurring.ApplyAll(ctx); err != nil {
				t.Fatalf("ApplyAll: %v", err)
			}
			cats, err := res.Ledger.Catalog.ListCategories(ctx)
			if err != nil || len(cats) != 1 || cats[0].ID != cat.ID {
				t.Fatalf("ListCategories = %v, %v", cats, err)
			}
		})
	}
}

func TestCombineCleanup_ReverseOrderAndJoin(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	cleanup := combineCleanup([]CleanupFunc{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return boom },
	})

	err := cleanup()
	if !errors.Is(err, boom) {
		t.Errorf("expected joined error, got %v", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("cleanup order = %v, want [2 1]", order)
	}
}

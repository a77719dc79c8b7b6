package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/storage"
)

func TestStoreCommitAndRollback(t *testing.T) {
	ctx := context.Background()
	s := New()

	var cat core.Category
	err := s.WithinTx(ctx, func(tx storage.Tx) error {
		cat = core.Category{Name: "식비", Type: core.Expense}
		return tx.CreateCategory(ctx, &cat)
	})
	if err != nil || cat.ID == 0 {
		t.Fatalf("create category: id=%d err=%v", cat.ID, err)
	}

	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(tx storage.Tx) error {
		if err := tx.DeleteCategory(ctx, cat.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	_ = s.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetCategory(ctx, cat.ID); err != nil {
			t.Errorf("category should survive the failed unit of work: %v", err)
		}
		return nil
	})
}

func TestStoreReturnedEntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	var e core.Entry
	_ = s.WithinTx(ctx, func(tx storage.Tx) error {
		a := core.Asset{Type: core.Cash, Name: "지갑", Balance: decimal.Zero}
		_ = tx.CreateAsset(ctx, &a)
		e = core.Entry{
			Date: core.NewDate(2024, 1, 2), Amount: decimal.NewFromInt(5),
			PaymentMethod: core.PayCash, SourceAssetID: core.IDPtr(a.ID),
		}
		return tx.CreateEntry(ctx, &e)
	})

	original := *e.SourceAssetID
	*e.SourceAssetID = 999

	_ = s.WithinTx(ctx, func(tx storage.Tx) error {
		got, err := tx.GetEntry(ctx, e.ID)
		if err != nil {
			t.Fatalf("get entry: %v", err)
		}
		if *got.SourceAssetID != original {
			t.Errorf("stored entry was mutated through caller pointer: %d", *got.SourceAssetID)
		}
		return nil
	})
}

func TestStoreFilterAndReferences(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.WithinTx(ctx, func(tx storage.Tx) error {
		card := core.Card{Name: "현대", Type: core.CheckCard}
		if err := tx.CreateCard(ctx, &card); err != nil {
			return err
		}
		for _, day := range []int{20, 5, 12} {
			e := core.Entry{
				Date: core.NewDate(2024, 6, day), Amount: decimal.NewFromInt(int64(day)),
				PaymentMethod: core.PayCard, CardID: core.IDPtr(card.ID),
			}
			if err := tx.CreateEntry(ctx, &e); err != nil {
				return err
			}
		}

		got, err := tx.ListEntries(ctx, storage.EntryFilter{CardID: core.IDPtr(card.ID), To: core.NewDate(2024, 6, 15)})
		if err != nil {
			return err
		}
		if len(got) != 2 || got[0].Date.Day() != 5 || got[1].Date.Day() != 12 {
			t.Errorf("unexpected filter result: %+v", got)
		}

		if err := tx.DeleteCard(ctx, card.ID); err != nil {
			return err
		}
		all, _ := tx.ListEntries(ctx, storage.EntryFilter{})
		for _, e := range all {
			if e.CardID != nil {
				t.Errorf("entry %d still references deleted card", e.ID)
			}
		}
		if err := tx.DeleteCard(ctx, card.ID); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStoreBudgets(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.WithinTx(ctx, func(tx storage.Tx) error {
		cat := core.Category{Name: "식비", Type: core.Expense}
		if err := tx.CreateCategory(ctx, &cat); err != nil {
			return err
		}
		b := core.Budget{Year: 2024, Month: 3, CategoryID: cat.ID, Amount: decimal.NewFromInt(300000)}
		if err := tx.CreateBudget(ctx, &b); err != nil {
			return err
		}
		dup := b
		if err := tx.CreateBudget(ctx, &dup); err == nil {
			t.Error("duplicate budget accepted")
		}
		if inUse, _ := tx.CategoryInUse(ctx, cat.ID); !inUse {
			t.Error("budgeted category should be in use")
		}
		march := core.MonthIndex(2024, 3)
		if got, _ := tx.ListBudgets(ctx, march+1, march+5); len(got) != 0 {
			t.Errorf("budgets outside the range: %+v", got)
		}
		if got, _ := tx.ListBudgets(ctx, march, march); len(got) != 1 || got[0].ID != b.ID {
			t.Errorf("ListBudgets = %+v", got)
		}
		if err := tx.DeleteBudget(ctx, b.ID); err != nil {
			return err
		}
		if found, _ := tx.FindBudget(ctx, 2024, 3, cat.ID); found != nil {
			t.Errorf("budget still found after delete: %+v", found)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/storage"
)

type BudgetRequest struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	CategoryID int64           `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
}

// BudgetStatus is a budget next to what its category has spent that month.
// Only confirmed entries count.
type BudgetStatus struct {
	core.Budget
	CategoryName string          `json:"categoryName"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// BudgetService keeps one monthly budget per category.
type BudgetService struct {
	uow storage.UnitOfWork
}

func NewBudgetService(uow storage.UnitOfWork) *BudgetService {
	return &BudgetService{uow: uow}
}

// Set creates the category's budget for the month, or replaces its amount.
func (s *BudgetService) Set(ctx context.Context, req BudgetRequest) (core.Budget, error) {
	b := core.Budget{Year: req.Year, Month: req.Month, CategoryID: req.CategoryID, Amount: req.Amount}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	created := false
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetCategory(ctx, b.CategoryID); err != nil {
			return err
		}
		existing, err := tx.FindBudget(ctx, b.Year, b.Month, b.CategoryID)
		if err != nil {
			return err
		}
		if existing == nil {
			created = true
			return tx.CreateBudget(ctx, &b)
		}
		b.ID = existing.ID
		return tx.UpdateBudget(ctx, b)
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget set",
		"id", b.ID,
		"month", fmt.Sprintf("%04d-%02d", b.Year, b.Month),
		"category_id", b.CategoryID,
		"amount", b.Amount.String(),
		"created", created)
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, id int64) error {
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		return tx.DeleteBudget(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Budget deleted", "id", id)
	return nil
}

// Month lists the budgets of one month with their spending.
func (s *BudgetService) Month(ctx context.Context, year, month int) ([]BudgetStatus, error) {
	b := core.Budget{Year: year, Month: month}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	from, to := b.Period()
	return s.statuses(ctx, from, to)
}

// Period lists the budgets of every month touched by [from, to].
func (s *BudgetService) Period(ctx context.Context, from, to core.Date) ([]BudgetStatus, error) {
	if from.IsZero() || to.IsZero() {
		return nil, &core.ValidationError{Field: "period", Err: fmt.Errorf("both start and end dates are required")}
	}
	if to.Before(from) {
		return nil, &core.ValidationError{Field: "period", Err: fmt.Errorf("end %s is before start %s", to, from)}
	}
	return s.statuses(ctx, from.MonthStart(), to.MonthEnd())
}

type budgetKey struct {
	month      int
	categoryID int64
}

func (s *BudgetService) statuses(ctx context.Context, from, to core.Date) ([]BudgetStatus, error) {
	var out []BudgetStatus
	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		budgets, err := tx.ListBudgets(ctx,
			core.MonthIndex(from.Year(), from.Month()),
			core.MonthIndex(to.Year(), to.Month()))
		if err != nil {
			return err
		}
		if len(budgets) == 0 {
			return nil
		}

		confirmed := true
		entries, err := tx.ListEntries(ctx, storage.EntryFilter{From: from, To: to, Confirmed: &confirmed})
		if err != nil {
			return err
		}
		spent := make(map[budgetKey]decimal.Decimal)
		for _, e := range entries {
			k := budgetKey{core.MonthIndex(e.Date.Year(), e.Date.Month()), e.CategoryID}
			spent[k] = spent[k].Add(e.Amount)
		}

		categories, err := tx.ListCategories(ctx)
		if err != nil {
			return err
		}
		names := make(map[int64]string, len(categories))
		for _, c := range categories {
			names[c.ID] = c.Name
		}

		out = make([]BudgetStatus, 0, len(budgets))
		for _, b := range budgets {
			used := spent[budgetKey{b.Index(), b.CategoryID}]
			out = append(out, BudgetStatus{
				Budget:       b,
				CategoryName: names[b.CategoryID],
				Spent:        used,
				Remaining:    b.Amount.Sub(used),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list budgets %s..%s: %w", from, to, err)
	}
	return out, nil
}

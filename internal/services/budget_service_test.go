package services

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"gagyebu/internal/core"
)

func (f *fixture) spend(date core.Date, amount string, cat core.Category, confirmed bool) {
	f.t.Helper()
	_, err := f.entries.Create(f.ctx, EntryRequest{
		Date:          date,
		Amount:        dec(amount),
		PaymentMethod: core.PayCash,
		CategoryID:    cat.ID,
		IsConfirmed:   boolPtr(confirmed),
	})
	assert.NoError(f.t, err)
}

func TestBudgetService_SetReplacesAmount(t *testing.T) {
	f := newFixture(t, march10)
	food := f.category("식비", core.Expense)

	first, err := f.budgets.Set(f.ctx, BudgetRequest{Year: 2024, Month: 3, CategoryID: food.ID, Amount: dec("300000")})
	assert.NoError(t, err)
	second, err := f.budgets.Set(f.ctx, BudgetRequest{Year: 2024, Month: 3, CategoryID: food.ID, Amount: dec("350000")})
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := f.budgets.Month(f.ctx, 2024, 3)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "350000", got[0].Amount.String())
}

func TestBudgetService_MonthStatus(t *testing.T) {
	f := newFixture(t, march10)
	f.defaultAsset("지갑", "1000000")
	food := f.category("식비", core.Expense)
	fun := f.category("여가", core.Expense)

	_, err := f.budgets.Set(f.ctx, BudgetRequest{Year: 2024, Month: 3, CategoryID: food.ID, Amount: dec("300000")})
	assert.NoError(t, err)

	f.spend(core.NewDate(2024, 3, 1), "120000", food, true)
	f.spend(march10, "30000", food, true)
	f.spend(core.NewDate(2024, 3, 25), "99000", food, false)
	f.spend(core.NewDate(2024, 2, 29), "50000", food, true)
	f.spend(march10, "70000", fun, true)

	got, err := f.budgets.Month(f.ctx, 2024, 3)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "식비", got[0].CategoryName)
	assert.Equal(t, "150000", got[0].Spent.String())
	assert.Equal(t, "150000", got[0].Remaining.String())

	empty, err := f.budgets.Month(f.ctx, 2024, 4)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(empty))
}

func TestBudgetService_Period(t *testing.T) {
	f := newFixture(t, march10)
	f.defaultAsset("지갑", "1000000")
	food := f.category("식비", core.Expense)

	for _, m := range []int{2, 3, 5} {
		_, err := f.budgets.Set(f.ctx, BudgetRequest{Year: 2024, Month: m, CategoryID: food.ID, Amount: dec("100000")})
		assert.NoError(t, err)
	}
	f.spend(core.NewDate(2024, 2, 1), "40000", food, true)
	f.spend(march10, "120000", food, true)

	got, err := f.budgets.Period(f.ctx, core.NewDate(2024, 2, 15), core.NewDate(2024, 3, 5))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(got))
	assert.Equal(t, 2, got[0].Month)
	assert.Equal(t, "40000", got[0].Spent.String())
	assert.Equal(t, 3, got[1].Month)
	assert.Equal(t, "-20000", got[1].Remaining.String())

	_, err = f.budgets.Period(f.ctx, march10, core.NewDate(2024, 3, 1))
	var ve *core.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "period", ve.Field)
}

func TestBudgetService_Rejects(t *testing.T) {
	f := newFixture(t, march10)
	food := f.category("식비", core.Expense)

	tests := []struct {
		name  string
		req   BudgetRequest
		field string
	}{
		{"month zero", BudgetRequest{Year: 2024, Month: 0, CategoryID: food.ID, Amount: dec("1")}, "month"},
		{"month thirteen", BudgetRequest{Year: 2024, Month: 13, CategoryID: food.ID, Amount: dec("1")}, "month"},
		{"negative amount", BudgetRequest{Year: 2024, Month: 3, CategoryID: food.ID, Amount: dec("-1")}, "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.budgets.Set(f.ctx, tt.req)
			var ve *core.ValidationError
			assert.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	_, err := f.budgets.Set(f.ctx, BudgetRequest{Year: 2024, Month: 3, CategoryID: 999, Amount: dec("1")})
	assert.True(t, errors.Is(err, core.ErrNotFound))

	assert.True(t, errors.Is(f.budgets.Delete(f.ctx, 999), core.ErrNotFound))
}

func TestBudgetService_BudgetBlocksCategoryDelete(t *testing.T) {
	f := newFixture(t, march10)
	food := f.category("식비", core.Expense)
	b, err := f.budgets.Set(f.ctx, BudgetRequest{Year: 2024, Month: 3, CategoryID: food.ID, Amount: dec("1")})
	assert.NoError(t, err)

	assert.True(t, errors.Is(f.catalog.DeleteCategory(f.ctx, food.ID), core.ErrCategoryInUse))

	assert.NoError(t, f.budgets.Delete(f.ctx, b.ID))
	assert.NoError(t, f.catalog.DeleteCategory(f.ctx, food.ID))
}

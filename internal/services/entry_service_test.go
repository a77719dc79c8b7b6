package services

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"gagyebu/internal/amqp"
	"gagyebu/internal/core"
)

var march10 = core.NewDate(2024, 3, 10)

func TestEntryService_ExpenseThenDeleteRestoresBalance(t *testing.T) {
	f := newFixture(t, march10)
	cash := f.defaultAsset("현금", "100000")
	food := f.category("식비", core.Expense)

	e, err := f.entries.Create(f.ctx, EntryRequest{
		Date: march10, Amount: dec("20000"), PaymentMethod: core.PayCash, CategoryID: food.ID,
	})
	assert.NoError(t, err)
	assert.True(t, e.IsConfirmed)
	assert.Equal(t, cash.ID, *e.SourceAssetID)
	assert.Equal(t, "80000", f.balance(cash.ID))

	assert.NoError(t, f.entries.Delete(f.ctx, e.ID))
	assert.Equal(t, "100000", f.balance(cash.ID))
	assert.Equal(t, []amqp.EventType{amqp.EntryCreated, amqp.EntryDeleted}, f.pub.types())
}

func TestEntryService_TransferMovesBetweenAssets(t *testing.T) {
	f := newFixture(t, march10)
	x := f.asset(core.Cash, "X", "1000")
	y := f.asset(core.Savings, "Y", "500")
	move := f.category("이체", core.Transfer)

	_, err := f.entries.Create(f.ctx, EntryRequest{
		Date: march10, Amount: dec("5000"), PaymentMethod: core.PayBankTransfer,
		CategoryID: move.ID, AssetID: &x.ID, ToAssetID: &y.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, "-4000", f.balance(x.ID))
	assert.Equal(t, "5500", f.balance(y.ID))
}

func TestEntryService_SavingsCategoryActsAsTransfer(t *testing.T) {
	f := newFixture(t, march10)
	cash := f.defaultAsset("현금", "1000")
	fund := f.asset(core.Stock, "펀드", "0")
	savings := f.category(core.SavingsInvestmentCategory, core.Expense)

	_, err := f.entries.Create(f.ctx, EntryRequest{
		Date: march10, Amount: dec("300"), PaymentMethod: core.PayBankTransfer,
		CategoryID: savings.ID, AssetID: &cash.ID, ToAssetID: &fund.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, "700", f.balance(cash.ID))
	assert.Equal(t, "300", f.balance(fund.ID))
}

func TestEntryService_TransferWithoutSourceIsNoOp(t *testing.T) {
	f := newFixture(t, march10)
	cash := f.defaultAsset("현금", "1000")
	dest := f.asset(core.Savings, "적금", "0")
	move := f.category("이체", core.Transfer)

	e, err := f.entries.Create(f.ctx, EntryRequest{
		Date: march10, Amount: dec("100"), PaymentMethod: core.PayBankTransfer,
		CategoryID: move.ID, ToAssetID: &dest.ID,
	})
	assert.NoError(t, err)
	assert.Zero(t, e.SourceAssetID)
	assert.Equal(t, "1000", f.balance(cash.ID))
	assert.Equal(t, "0", f.balance(dest.ID))
}

func TestEntryService_UnconfirmedThenConfirmAppliesOnce(t *testing.T) {
	f := newFixture(t, march10)
	cash := f.defaultAsset("현금", "1000")
	salary := f.category("급여", core.Income)

	e, err := f.entries.Create(f.ctx, EntryRequest{
		Date: core.NewDate(2024, 3, 25), Amount: dec("250.50"), PaymentMethod: core.PayBankTransfer,
		CategoryID: salary.ID, IsConfirmed: boolPtr(false),
	})
	assert.NoError(t, err)
	assert.False(t, e.IsConfirmed)
	assert.Equal(t, "1000", f.balance(cash.ID))

	planned, err := f.entries.ListPlanned(f.ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(planned))

	for range 2 {
		e, err = f.entries.Confirm(f.ctx, e.ID)
		assert.NoError(t, err)
		assert.True(t, e.IsConfirmed)
	}
	assert.Equal(t, "1250.5", f.balance(cash.ID))
	assert.Equal(t, []amqp.EventType{amqp.EntryCreated, amqp.EntryConfirmed}, f.pub.types())

	planned, err = f.entries.ListPlanned(f.ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(planned))
}

func TestEntryService_UpdateReversesThenApplies(t *testing.T) {
	f := newFixture(t, march10)
	cash := f.defaultAsset("현금", "1000")
	bank := f.asset(core.Savings, "통장", "1000")
	food := f.category("식비", core.Expense)
	salary := f.category("급여", core.Income)

	e, err := f.entries.Create(f.ctx, EntryRequest{
		Date: march10, Amount: dec("100"), PaymentMethod: core.PayCash, CategoryID: food.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, "900", f.balance(cash.ID))

	tests := []struct {
		name     string
		req      EntryRequest
		wantCash string
		wantBank string
	}{
		{
			name:     "amount change",
			req:      EntryRequest{Date: march10, Amount: dec("40"), PaymentMethod: core.PayCash, CategoryID: food.ID},
			wantCash: "960", wantBank: "1000",
		},
		{
			name:     "move to another asset",
			req:      EntryRequest{Date: march10, Amount: dec("40"), PaymentMethod: core.PayCash, CategoryID: food.ID, AssetID: &bank.ID},
			wantCash: "1000", wantBank: "960",
		},
		{
			name:     "expense becomes income",
			req:      EntryRequest{Date: march10, Amount: dec("40"), PaymentMethod: core.PayCash, CategoryID: salary.ID, AssetID: &bank.ID},
			wantCash: "1000", wantBank: "1040",
		},
		{
			name:     "unconfirm",
			req:      EntryRequest{Date: march10, Amount: dec("40"), PaymentMethod: core.PayCash, CategoryID: salary.ID, AssetID: &bank.ID, IsConfirmed: boolPtr(false)},
			wantCash: "1000", wantBank: "1000",
		},
		{
			name:     "omitted flag keeps unconfirmed",
			req:      EntryRequest{Date: march10, Amount: dec("70"), PaymentMethod: core.PayCash, CategoryID: salary.ID, AssetID: &bank.ID},
			wantCash: "1000", wantBank: "1000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.entries.Update(f.ctx, e.ID, tt.req)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCash, f.balance(cash.ID))
			assert.Equal(t, tt.wantBank, f.balance(bank.ID))
		})
	}
}

func TestEntryService_UpdateWithUnknownCategoryLeavesBalances(t *testing.T) {
	f := newFixture(t, march10)
	cash := f.defaultAsset("현금", "1000")
	food := f.category("식비", core.Expense)

	e, err := f.entries.Create(f.ctx, EntryRequest{
		Date: march10, Amount: dec("100"), PaymentMethod: core.PayCash, CategoryID: food.ID,
	})
	assert.NoError(t, err)

	_, err = f.entries.Update(f.ctx, e.ID, EntryRequest{
		Date: march10, Amount: dec("10"), PaymentMethod: core.PayCash, CategoryID: 9999,
	})
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.Equal(t, "900", f.balance(cash.ID))

	stored, err := f.entries.Get(f.ctx, e.ID)
	assert.NoError(t, err)
	assert.Equal(t, "100", stored.Amount.String())
}

func TestEntryService_CreateRejects(t *testing.T) {
	f := newFixture(t, march10)
	food := f.category("식비", core.Expense)

	tests := []struct {
		name   string
		req    EntryRequest
		target error
	}{
		{"negative amount", EntryRequest{Date: march10, Amount: dec("-1"), PaymentMethod: core.PayCash, CategoryID: food.ID}, core.ErrValidation},
		{"missing date", EntryRequest{Amount: dec("1"), PaymentMethod: core.PayCash, CategoryID: food.ID}, core.ErrValidation},
		{"bad payment method", EntryRequest{Date: march10, Amount: dec("1"), PaymentMethod: "CHEQUE", CategoryID: food.ID}, core.ErrValidation},
		{"unknown category", EntryRequest{Date: march10, Amount: dec("1"), PaymentMethod: core.PayCash, CategoryID: 404}, core.ErrNotFound},
		{"unknown card", EntryRequest{Date: march10, Amount: dec("1"), PaymentMethod: core.PayCard, CategoryID: food.ID, CardID: core.IDPtr(404)}, core.ErrNotFound},
		{"unknown asset", EntryRequest{Date: march10, Amount: dec("1"), PaymentMethod: core.PayCash, CategoryID: food.ID, AssetID: core.IDPtr(404)}, core.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.entries.Create(f.ctx, tt.req)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
	assert.Equal(t, 0, len(f.allEntries()))
}

func TestEntryService_CardOnlyKeptForCardPayments(t *testing.T) {
	f := newFixture(t, march10)
	food := f.category("식비", core.Expense)
	card, err := f.catalog.CreateCard(f.ctx, "신한", core.CreditCard)
	assert.NoError(t, err)

	byCash, err := f.entries.Create(f.ctx, EntryRequest{
		Date: march10, Amount: dec("1"), PaymentMethod: core.PayCash, CategoryID: food.ID, CardID: &card.ID,
	})
	assert.NoError(t, err)
	assert.Zero(t, byCash.CardID)

	byCard, err := f.entries.Create(f.ctx, EntryRequest{
		Date: march10, Amount: dec("2"), PaymentMethod: core.PayCard, CategoryID: food.ID, CardID: &card.ID,
	})
	assert.NoError(t, err)

	got, err := f.entries.ListByCard(f.ctx, card.ID, core.Date{}, core.Date{})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, byCard.ID, got[0].ID)

	got, err = f.entries.ListByPaymentMethod(f.ctx, core.PayCash, march10.MonthStart(), march10.MonthEnd())
	assert.NoError(t, err)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, byCash.ID, got[0].ID)
}

func TestEntryService_ReversalSymmetry(t *testing.T) {
	kinds := []core.CategoryType{core.Income, core.Expense, core.Transfer}
	amounts := []string{"0", "0.01", "12345.678", "99999999.99"}

	for _, kind := range kinds {
		for _, amount := range amounts {
			t.Run(string(kind)+"/"+amount, func(t *testing.T) {
				f := newFixture(t, march10)
				src := f.defaultAsset("src", "321.09")
				dst := f.asset(core.Savings, "dst", "-5")
				cat := f.category("c", kind)

				e, err := f.entries.Create(f.ctx, EntryRequest{
					Date: march10, Amount: dec(amount), PaymentMethod: core.PayBankTransfer,
					CategoryID: cat.ID, AssetID: &src.ID, ToAssetID: &dst.ID,
				})
				assert.NoError(t, err)
				assert.NoError(t, f.entries.Delete(f.ctx, e.ID))
				assert.Equal(t, "321.09", f.balance(src.ID))
				assert.Equal(t, "-5", f.balance(dst.ID))
			})
		}
	}
}

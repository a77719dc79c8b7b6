package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"gagyebu/internal/backend"
	"gagyebu/internal/core"
	"gagyebu/internal/services"
	"gagyebu/internal/storage/memory"
)

func newRuntime(t *testing.T, jsonOut bool) (*runtime, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	l := backend.NewLedger(memory.New(), nil, core.FixedClock(core.NewDate(2024, 3, 20)))
	return &runtime{ctx: context.Background(), ledger: l, out: &out, json: jsonOut}, &out
}

func seedLedger(t *testing.T, rt *runtime) (core.Category, core.Asset) {
	t.Helper()
	a, err := rt.ledger.Assets.Create(rt.ctx, services.AssetRequest{Type: core.Cash, Name: "지갑", Balance: decimal.RequireFromString("100000")})
	assert.NoError(t, err)
	_, err = rt.ledger.Assets.SetDefault(rt.ctx, a.ID)
	assert.NoError(t, err)
	cat, err := rt.ledger.Catalog.CreateCategory(rt.ctx, "주거", core.Expense)
	assert.NoError(t, err)
	return cat, a
}

func TestCommandGrammar(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"apply-all"}, "apply-all"},
		{[]string{"apply", "7"}, "apply <id>"},
		{[]string{"confirm", "12"}, "confirm <id>"},
		{[]string{"--json", "net-worth"}, "net-worth"},
		{[]string{"--backend", "memory", "planned"}, "planned"},
		{[]string{"tax", "stock", "--sell", "10000000", "--buy", "7000000"}, "tax stock"},
		{[]string{"tax", "year-end", "--salary", "40000000", "--year", "2023"}, "tax year-end"},
		{[]string{"budgets", "--year", "2024", "--month", "3"}, "budgets"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			var grammar struct {
				Globals
				Commands
			}
			parser, err := kong.New(&grammar, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
			assert.NoError(t, err)
			kctx, err := parser.Parse(tt.args)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, kctx.Command())
		})
	}
}

func TestApplyAllAndPlanned(t *testing.T) {
	rt, out := newRuntime(t, false)
	cat, _ := seedLedger(t, rt)

	_, err := rt.ledger.Recurring.Create(rt.ctx, services.TemplateRequest{
		Name: "관리비", Amount: decimal.RequireFromString("150000"), DayOfMonth: 25,
		PaymentMethod: core.PayBankTransfer, CategoryID: cat.ID,
	})
	assert.NoError(t, err)

	assert.NoError(t, (&ApplyAllCmd{}).Run(rt))
	assert.Contains(t, out.String(), "applied 1, expired and deleted 0")

	out.Reset()
	assert.NoError(t, (&PlannedCmd{}).Run(rt))
	assert.Contains(t, out.String(), "2024-03-25")
	assert.Contains(t, out.String(), "관리비"+core.RecurringMemoSuffix)
}

func TestApplyExpiredTemplateIsReported(t *testing.T) {
	rt, out := newRuntime(t, true)
	cat, _ := seedLedger(t, rt)

	tmpl, err := rt.ledger.Recurring.Create(rt.ctx, services.TemplateRequest{
		Name: "보험", Amount: decimal.RequireFromString("30000"), DayOfMonth: 1,
		PaymentMethod: core.PayCash, CategoryID: cat.ID, EndDate: core.NewDate(2024, 1, 31),
	})
	assert.NoError(t, err)

	assert.NoError(t, (&ApplyCmd{ID: tmpl.ID}).Run(rt))
	var summary core.ApplySummary
	assert.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, core.ApplySummary{ExpiredDeletedCount: 1}, summary)
}

func TestConfirmAndNetWorth(t *testing.T) {
	rt, out := newRuntime(t, false)
	cat, a := seedLedger(t, rt)

	unconfirmed := false
	e, err := rt.ledger.Entries.Create(rt.ctx, services.EntryRequest{
		Date: core.NewDate(2024, 3, 30), Amount: decimal.RequireFromString("40000"),
		PaymentMethod: core.PayCash, CategoryID: cat.ID, IsConfirmed: &unconfirmed,
	})
	assert.NoError(t, err)

	assert.NoError(t, (&ConfirmCmd{ID: e.ID}).Run(rt))
	assert.Contains(t, out.String(), "confirmed")

	got, err := rt.ledger.Assets.Get(rt.ctx, a.ID)
	assert.NoError(t, err)
	assert.Equal(t, "60000", got.Balance.String())

	out.Reset()
	assert.NoError(t, (&NetWorthCmd{}).Run(rt))
	assert.Contains(t, out.String(), "net worth")
	assert.Contains(t, out.String(), "60,000")
}

func TestWon(t *testing.T) {
	assert.Equal(t, "₩1,234,568", won(decimal.RequireFromString("1234567.6")))
	assert.Equal(t, "₩0", won(decimal.Zero))
}

func TestConfirmUnknownEntry(t *testing.T) {
	rt, _ := newRuntime(t, false)
	err := (&ConfirmCmd{ID: 404}).Run(rt)
	assert.IsError(t, err, core.ErrNotFound)
}

func TestTaxCommands(t *testing.T) {
	rt, out := newRuntime(t, false)
	assert.NoError(t, (&TaxStockCmd{Sell: "10000000", Buy: "7000000"}).Run(rt))
	assert.Contains(t, out.String(), "estimated tax ₩110,000")

	out.Reset()
	assert.NoError(t, (&TaxYearEndCmd{Salary: "40000000", Credit: "12000000", Debit: "3000000"}).Run(rt))
	assert.Contains(t, out.String(), "2024 settlement")
	assert.Contains(t, out.String(), "estimated deduction ₩1,200,000")
	assert.Contains(t, out.String(), "would have added ₩300,000")

	err := (&TaxStockCmd{Sell: "lots", Buy: "0"}).Run(rt)
	assert.EqualError(t, err, `--sell: "lots" is not an amount`)
}

func TestTaxYearEndFromLedgerJSON(t *testing.T) {
	rt, out := newRuntime(t, true)
	cat, _ := seedLedger(t, rt)
	card, err := rt.ledger.Catalog.CreateCard(rt.ctx, "체크", core.CheckCard)
	assert.NoError(t, err)
	_, err = rt.ledger.Entries.Create(rt.ctx, services.EntryRequest{
		Date: core.NewDate(2024, 3, 2), Amount: decimal.RequireFromString("30000"),
		PaymentMethod: core.PayCard, CategoryID: cat.ID, CardID: core.IDPtr(card.ID),
	})
	assert.NoError(t, err)

	assert.NoError(t, (&TaxYearEndCmd{Salary: "100000"}).Run(rt))
	var report services.YearEndReport
	assert.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.FromLedger)
	assert.Equal(t, "30000", report.DebitCashAmount.String())
	// 25,000 threshold, the remaining 5,000 of check card spending at 30%.
	assert.Equal(t, "1500", report.EstimatedDeduction.String())
}

func TestBudgetsCommand(t *testing.T) {
	rt, out := newRuntime(t, false)
	cat, _ := seedLedger(t, rt)

	assert.NoError(t, (&BudgetsCmd{Year: 2024, Month: 3}).Run(rt))
	assert.Contains(t, out.String(), "no budgets for 2024-03")

	_, err := rt.ledger.Budgets.Set(rt.ctx, services.BudgetRequest{Year: 2024, Month: 3, CategoryID: cat.ID, Amount: decimal.RequireFromString("700000")})
	assert.NoError(t, err)
	_, err = rt.ledger.Entries.Create(rt.ctx, services.EntryRequest{
		Date: core.NewDate(2024, 3, 5), Amount: decimal.RequireFromString("650000"),
		PaymentMethod: core.PayCash, CategoryID: cat.ID,
	})
	assert.NoError(t, err)

	out.Reset()
	assert.NoError(t, (&BudgetsCmd{Year: 2024, Month: 3}).Run(rt))
	assert.Contains(t, out.String(), "주거")
	assert.Contains(t, out.String(), "₩650,000")
	assert.Contains(t, out.String(), "₩50,000")

	var ve *core.ValidationError
	assert.True(t, errors.As((&BudgetsCmd{Year: 2024, Month: 0}).Run(rt), &ve))
}

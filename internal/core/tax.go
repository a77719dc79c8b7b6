package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Korean individual-investor capital gains on overseas stocks: a flat basic
// deduction, then 20% national plus 2% local tax, truncated to the won.
var (
	StockBasicDeduction = decimal.NewFromInt(2_500_000)
	StockTaxRate        = decimal.RequireFromString("0.22")
)

// Year-end settlement card deduction: spending counts only above a quarter
// of the gross salary, then credit cards at 15% and check cards or cash
// receipts at 30%.
var (
	CardUsageThresholdRate = decimal.RequireFromString("0.25")
	CreditDeductionRate    = decimal.RequireFromString("0.15")
	DebitDeductionRate     = decimal.RequireFromString("0.30")
)

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrInvalidYear    = errors.New("year out of range")
)

// StockTax is an estimate of the capital gains tax on realized profit.
type StockTax struct {
	Profit       decimal.Decimal `json:"profit"`
	Deduction    decimal.Decimal `json:"deduction"`
	TaxBase      decimal.Decimal `json:"taxBase"`
	EstimatedTax decimal.Decimal `json:"estimatedTax"`
}

// CalculateStockTax estimates the tax on selling for totalSell what was
// bought for totalBuy. Profit up to the basic deduction, and any loss, is
// untaxed.
func CalculateStockTax(totalSell, totalBuy decimal.Decimal) (StockTax, error) {
	if totalSell.IsNegative() {
		return StockTax{}, &ValidationError{Field: "totalSellAmount", Err: ErrNegativeAmount}
	}
	if totalBuy.IsNegative() {
		return StockTax{}, &ValidationError{Field: "totalBuyAmount", Err: ErrNegativeAmount}
	}

	profit := totalSell.Sub(totalBuy)
	st := StockTax{
		Profit:       profit,
		Deduction:    StockBasicDeduction,
		TaxBase:      decimal.Zero,
		EstimatedTax: decimal.Zero,
	}
	if profit.LessThanOrEqual(StockBasicDeduction) {
		return st, nil
	}
	st.TaxBase = profit.Sub(StockBasicDeduction)
	st.EstimatedTax = st.TaxBase.Mul(StockTaxRate).Floor()
	return st, nil
}

// YearEndSettlement simulates the card spending deduction of one year.
type YearEndSettlement struct {
	TotalSalary      decimal.Decimal `json:"totalSalary"`
	CreditCardAmount decimal.Decimal `json:"creditCardAmount"`
	DebitCashAmount  decimal.Decimal `json:"debitCashAmount"`

	MinUsageThreshold  decimal.Decimal `json:"minUsageThreshold"`
	EstimatedDeduction decimal.Decimal `json:"estimatedDeduction"`
	// UntilThreshold is the spending still missing before anything counts.
	UntilThreshold decimal.Decimal `json:"untilThreshold"`
	// MissedDeduction is what moving the credit spending above the threshold
	// to a check card would have added.
	MissedDeduction decimal.Decimal `json:"missedDeduction"`
}

// SimulateYearEndSettlement fills the threshold with credit card spending
// first, which keeps the card benefits, and deducts what lies above it.
func SimulateYearEndSettlement(salary, credit, debitCash decimal.Decimal) (YearEndSettlement, error) {
	for _, in := range []struct {
		field string
		v     decimal.Decimal
	}{
		{"totalSalary", salary},
		{"creditCardAmount", credit},
		{"debitCashAmount", debitCash},
	} {
		if in.v.IsNegative() {
			return YearEndSettlement{}, &ValidationError{Field: in.field, Err: ErrNegativeAmount}
		}
	}

	threshold := salary.Mul(CardUsageThresholdRate)
	ys := YearEndSettlement{
		TotalSalary:        salary,
		CreditCardAmount:   credit,
		DebitCashAmount:    debitCash,
		MinUsageThreshold:  threshold,
		EstimatedDeduction: decimal.Zero,
		UntilThreshold:     decimal.Zero,
		MissedDeduction:    decimal.Zero,
	}

	total := credit.Add(debitCash)
	if total.LessThanOrEqual(threshold) {
		ys.UntilThreshold = threshold.Sub(total)
		return ys, nil
	}

	creditAbove := decimal.Max(credit.Sub(threshold), decimal.Zero)
	debitInThreshold := decimal.Min(debitCash, threshold.Sub(decimal.Min(credit, threshold)))
	debitAbove := debitCash.Sub(debitInThreshold)

	ys.EstimatedDeduction = creditAbove.Mul(CreditDeductionRate).
		Add(debitAbove.Mul(DebitDeductionRate)).
		Floor()
	ys.MissedDeduction = creditAbove.Mul(DebitDeductionRate.Sub(CreditDeductionRate)).Floor()
	return ys, nil
}

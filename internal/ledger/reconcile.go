// Package ledger applies and reverses the balance effect of ledger entries.
//
// The functions here are pure with respect to storage: they receive the
// assets an entry touches, mutate their balances in place, and never look
// anything up. Callers load the assets, run the reconciliation and persist
// the result inside one unit of work.
package ledger

import (
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
)

// Effect describes the balance movement of one entry.
type Effect struct {
	Kind   core.CategoryType
	Source *core.Asset
	Dest   *core.Asset
	Amount decimal.Decimal
}

// Outcome reports what a reconciliation step did.
type Outcome struct {
	// Skipped is set when the entry has no source asset and nothing moved.
	Skipped bool
	// Touched lists the assets whose balance changed.
	Touched []*core.Asset
}

// Apply adds the effect to the assets:
//
//	INCOME:   source += amount
//	EXPENSE:  source -= amount
//	TRANSFER: source -= amount, dest += amount (when dest is set)
//
// Without a source asset the whole effect is skipped.
func Apply(e Effect) Outcome {
	return move(e, e.Amount)
}

// Reverse is the exact inverse of Apply for the same effect.
func Reverse(e Effect) Outcome {
	return move(e, e.Amount.Neg())
}

func move(e Effect, amount decimal.Decimal) Outcome {
	if e.Source == nil {
		return Outcome{Skipped: true}
	}
	switch e.Kind {
	case core.Income:
		e.Source.Balance = e.Source.Balance.Add(amount)
		return Outcome{Touched: []*core.Asset{e.Source}}
	case core.Expense:
		e.Source.Balance = e.Source.Balance.Sub(amount)
		return Outcome{Touched: []*core.Asset{e.Source}}
	case core.Transfer:
		e.Source.Balance = e.Source.Balance.Sub(amount)
		touched := []*core.Asset{e.Source}
		if e.Dest != nil {
			e.Dest.Balance = e.Dest.Balance.Add(amount)
			touched = append(touched, e.Dest)
		}
		return Outcome{Touched: touched}
	}
	return Outcome{Skipped: true}
}

// ResolveSource picks the source asset of an entry of kind k: the explicit
// one when given, otherwise the default asset for income and expense.
// Transfers never fall back to the default.
func ResolveSource(k core.CategoryType, explicit, defaultAsset *core.Asset) *core.Asset {
	if explicit != nil {
		return explicit
	}
	if core.UsesDefaultAsset(k) {
		return defaultAsset
	}
	return nil
}

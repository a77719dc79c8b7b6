package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// Budget is the spending planned for one category in one calendar month.
// There is at most one budget per category and month.
type Budget struct {
	ID         int64           `json:"id"`
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	CategoryID int64           `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
}

func (b Budget) Validate() error {
	if b.Year < 1 || b.Year > 9999 {
		return &ValidationError{Field: "year", Err: ErrInvalidYear}
	}
	if b.Month < 1 || b.Month > 12 {
		return &ValidationError{Field: "month", Err: ErrInvalidMonth}
	}
	if err := validateAmount(b.Amount); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	return nil
}

// MonthIndex orders months across years.
func MonthIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

// Index is the budget's position in MonthIndex order.
func (b Budget) Index() int {
	return MonthIndex(b.Year, time.Month(b.Month))
}

// Period is the first and last day of the budget's month.
func (b Budget) Period() (from, to Date) {
	from = NewDate(b.Year, time.Month(b.Month), 1)
	return from, from.MonthEnd()
}

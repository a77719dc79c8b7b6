package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income   CategoryType = "INCOME"
	Expense  CategoryType = "EXPENSE"
	Transfer CategoryType = "TRANSFER"
)

const (
	Cash    AssetType = "CASH"
	Savings AssetType = "SAVINGS"
	Stock   AssetType = "STOCK"
	Debt    AssetType = "DEBT"
)

const (
	PayCash         PaymentMethod = "CASH"
	PayCard         PaymentMethod = "CARD"
	PayBankTransfer PaymentMethod = "BANK_TRANSFER"
)

const (
	CreditCard CardType = "CREDIT"
	CheckCard  CardType = "CHECK"
)

// SavingsInvestmentCategory is moved between assets even when declared as an expense.
const SavingsInvestmentCategory = "저축/투자"

// RecurringMemoSuffix marks entries materialized from a recurring template.
const RecurringMemoSuffix = " (고정비용)"

type (
	CategoryType  string
	AssetType     string
	PaymentMethod string
	CardType      string

	Asset struct {
		ID            int64               `json:"id"`
		Type          AssetType           `json:"type"`
		Name          string              `json:"name"`
		Balance       decimal.Decimal     `json:"balance"`
		PurchasePrice decimal.NullDecimal `json:"purchasePrice"`
		IsDefault     bool                `json:"isDefault"`
	}

	Category struct {
		ID   int64        `json:"id"`
		Name string       `json:"name"`
		Type CategoryType `json:"type"`
	}

	Card struct {
		ID   int64    `json:"id"`
		Name string   `json:"name"`
		Type CardType `json:"type"`
	}

	// Entry is a ledger entry (a transaction). Values are copied freely, so a
	// loaded Entry doubles as the snapshot used when reversing its effect.
	Entry struct {
		ID                  int64           `json:"id"`
		Date                Date            `json:"date"`
		Amount              decimal.Decimal `json:"amount"`
		Memo                string          `json:"memo"`
		PaymentMethod       PaymentMethod   `json:"paymentMethod"`
		CategoryID          int64           `json:"categoryId"`
		CardID              *int64          `json:"cardId"`
		SourceAssetID       *int64          `json:"sourceAssetId"`
		DestAssetID         *int64          `json:"destAssetId"`
		RecurringTemplateID *int64          `json:"recurringTemplateId"`
		IsConfirmed         bool            `json:"isConfirmed"`
	}

	RecurringTemplate struct {
		ID            int64           `json:"id"`
		Name          string          `json:"name"`
		Amount        decimal.Decimal `json:"amount"`
		DayOfMonth    int             `json:"dayOfMonth"`
		PaymentMethod PaymentMethod   `json:"paymentMethod"`
		CardID        *int64          `json:"cardId"`
		CategoryID    int64           `json:"categoryId"`
		SourceAssetID *int64          `json:"sourceAssetId"`
		DestAssetID   *int64          `json:"destAssetId"`
		StartDate     Date            `json:"startDate"`
		EndDate       Date            `json:"endDate"`
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyName            = errors.New("empty name")
	ErrInvalidDayOfMonth    = errors.New("day of month must be between 1 and 31")
	ErrInvalidCategoryType  = errors.New("invalid category type")
	ErrInvalidAssetType     = errors.New("invalid asset type")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidCardType      = errors.New("invalid card type")
)

func (t CategoryType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (t AssetType) Valid() bool {
	switch t {
	case Cash, Savings, Stock, Debt:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCard, PayBankTransfer:
		return true
	}
	return false
}

func (t CardType) Valid() bool {
	return t == CreditCard || t == CheckCard
}

func validateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyName
	}
	if len(s) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	return nil
}

func (a Asset) Validate() error {
	if !a.Type.Valid() {
		return &ValidationError{Field: "type", Err: ErrInvalidAssetType}
	}
	if err := validateName(a.Name); err != nil {
		return &ValidationError{Field: "name", Err: err}
	}
	return nil
}

func (c Category) Validate() error {
	if err := validateName(c.Name); err != nil {
		return &ValidationError{Field: "name", Err: err}
	}
	if !c.Type.Valid() {
		return &ValidationError{Field: "type", Err: ErrInvalidCategoryType}
	}
	return nil
}

func (c Card) Validate() error {
	if err := validateName(c.Name); err != nil {
		return &ValidationError{Field: "name", Err: err}
	}
	if !c.Type.Valid() {
		return &ValidationError{Field: "type", Err: ErrInvalidCardType}
	}
	return nil
}

func (e Entry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	if err := validateAmount(e.Amount); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if !e.PaymentMethod.Valid() {
		return &ValidationError{Field: "paymentMethod", Err: ErrInvalidPaymentMethod}
	}
	if len(e.Memo) > 500 {
		return &ValidationError{Field: "memo", Err: errors.New("memo too long (max 500 characters)")}
	}
	return nil
}

func (rt RecurringTemplate) Validate() error {
	if err := validateName(rt.Name); err != nil {
		return &ValidationError{Field: "name", Err: err}
	}
	if err := validateAmount(rt.Amount); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if rt.DayOfMonth < 1 || rt.DayOfMonth > 31 {
		return &ValidationError{Field: "dayOfMonth", Err: ErrInvalidDayOfMonth}
	}
	if !rt.PaymentMethod.Valid() {
		return &ValidationError{Field: "paymentMethod", Err: ErrInvalidPaymentMethod}
	}
	if !rt.StartDate.IsZero() && !rt.EndDate.IsZero() && rt.EndDate.Before(rt.StartDate) {
		return &ValidationError{Field: "endDate", Err: fmt.Errorf("end date %s is before start date %s", rt.EndDate, rt.StartDate)}
	}
	return nil
}

// MaterializedMemo is the memo given to entries produced by the template.
func (rt RecurringTemplate) MaterializedMemo() string {
	return rt.Name + RecurringMemoSuffix
}

// Expired reports whether the template ended strictly before today.
func (rt RecurringTemplate) Expired(today Date) bool {
	return !rt.EndDate.IsZero() && rt.EndDate.Before(today)
}

// NotStarted reports whether the template starts strictly after today.
func (rt RecurringTemplate) NotStarted(today Date) bool {
	return !rt.StartDate.IsZero() && rt.StartDate.After(today)
}

// IDPtr returns a pointer to id, or nil when id is zero.
func IDPtr(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// SameID compares two optional references.
func SameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

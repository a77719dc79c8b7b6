package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{
		Date:          NewDate(2025, 1, 1),
		Amount:        decimal.NewFromInt(20000),
		PaymentMethod: PayCash,
		CategoryID:    1,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}

	bads := []Entry{
		{Amount: decimal.NewFromInt(1), PaymentMethod: PayCash},                             // zero date
		{Date: NewDate(2025, 1, 1), Amount: decimal.NewFromInt(-1), PaymentMethod: PayCash}, // negative
		{Date: NewDate(2025, 1, 1), Amount: decimal.NewFromInt(1), PaymentMethod: "CHEQUE"}, // payment method
	}
	for i, e := range bads {
		err := e.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected ErrValidation, got %v", i, err)
		}
	}
}

func TestRecurringTemplateValidate(t *testing.T) {
	good := RecurringTemplate{
		Name:          "월세",
		Amount:        decimal.NewFromInt(500000),
		DayOfMonth:    25,
		PaymentMethod: PayBankTransfer,
		CategoryID:    1,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RecurringTemplate)
		field  string
	}{
		{"empty name", func(rt *RecurringTemplate) { rt.Name = "  " }, "name"},
		{"negative amount", func(rt *RecurringTemplate) { rt.Amount = decimal.NewFromInt(-5) }, "amount"},
		{"day zero", func(rt *RecurringTemplate) { rt.DayOfMonth = 0 }, "dayOfMonth"},
		{"day 32", func(rt *RecurringTemplate) { rt.DayOfMonth = 32 }, "dayOfMonth"},
		{"end before start", func(rt *RecurringTemplate) {
			rt.StartDate = NewDate(2025, 3, 1)
			rt.EndDate = NewDate(2025, 2, 1)
		}, "endDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := good
			tt.mutate(&rt)
			err := rt.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestRecurringTemplateWindow(t *testing.T) {
	today := NewDate(2025, 6, 10)
	rt := RecurringTemplate{}
	if rt.Expired(today) || rt.NotStarted(today) {
		t.Fatal("open-ended template should be active")
	}

	rt.EndDate = NewDate(2025, 6, 9)
	if !rt.Expired(today) {
		t.Error("end date yesterday should be expired")
	}
	rt.EndDate = today
	if rt.Expired(today) {
		t.Error("end date today should not be expired")
	}

	rt.StartDate = NewDate(2025, 6, 11)
	if !rt.NotStarted(today) {
		t.Error("start date tomorrow should not be started")
	}
	rt.StartDate = today
	if rt.NotStarted(today) {
		t.Error("start date today should be started")
	}
}

func TestAssetValidate(t *testing.T) {
	if err := (Asset{Type: Cash, Name: "지갑"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Asset{Type: "GOLD", Name: "금"}).Validate(); !errors.Is(err, ErrInvalidAssetType) {
		t.Fatalf("expected ErrInvalidAssetType, got %v", err)
	}
	if err := (Asset{Type: Debt}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestSameID(t *testing.T) {
	one, other := int64(1), int64(1)
	two := int64(2)
	if !SameID(nil, nil) || !SameID(&one, &other) {
		t.Error("expected equal references")
	}
	if SameID(&one, nil) || SameID(&one, &two) {
		t.Error("expected different references")
	}
	if IDPtr(0) != nil {
		t.Error("IDPtr(0) should be nil")
	}
}

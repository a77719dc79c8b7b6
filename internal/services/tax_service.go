package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/storage"
)

type StockTaxRequest struct {
	TotalSellAmount decimal.Decimal `json:"totalSellAmount"`
	TotalBuyAmount  decimal.Decimal `json:"totalBuyAmount"`
}

// YearEndRequest asks for a settlement simulation. A card amount left null
// is summed from the ledger's confirmed card expenses of Year.
type YearEndRequest struct {
	TotalSalary      decimal.Decimal     `json:"totalSalary"`
	Year             int                 `json:"year"`
	CreditCardAmount decimal.NullDecimal `json:"creditCardAmount"`
	DebitCashAmount  decimal.NullDecimal `json:"debitCashAmount"`
}

// YearEndReport is a settlement simulation plus where its inputs came from.
type YearEndReport struct {
	core.YearEndSettlement
	Year       int  `json:"year"`
	FromLedger bool `json:"fromLedger"`
	// UnassignedCardAmount is card spending whose card was deleted; it is
	// in neither total.
	UnassignedCardAmount decimal.Decimal `json:"unassignedCardAmount"`
}

// CardSpending is the confirmed card expense of one year split by card type.
type CardSpending struct {
	Credit     decimal.Decimal
	Check      decimal.Decimal
	Unassigned decimal.Decimal
}

// TaxService runs the stock and year-end settlement estimates.
type TaxService struct {
	uow   storage.UnitOfWork
	clock core.Clock
}

func NewTaxService(uow storage.UnitOfWork, clock core.Clock) *TaxService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &TaxService{uow: uow, clock: clock}
}

func (s *TaxService) StockTax(_ context.Context, req StockTaxRequest) (core.StockTax, error) {
	return core.CalculateStockTax(req.TotalSellAmount, req.TotalBuyAmount)
}

func (s *TaxService) YearEnd(ctx context.Context, req YearEndRequest) (YearEndReport, error) {
	year := req.Year
	if year == 0 {
		year = s.clock.Today().Year()
	}
	if year < 1 || year > 9999 {
		return YearEndReport{}, &core.ValidationError{Field: "year", Err: core.ErrInvalidYear}
	}

	report := YearEndReport{Year: year, UnassignedCardAmount: decimal.Zero}
	credit, check := req.CreditCardAmount.Decimal, req.DebitCashAmount.Decimal
	if !req.CreditCardAmount.Valid || !req.DebitCashAmount.Valid {
		spent, err := s.CardSpending(ctx, year)
		if err != nil {
			return YearEndReport{}, err
		}
		if !req.CreditCardAmount.Valid {
			credit = spent.Credit
		}
		if !req.DebitCashAmount.Valid {
			check = spent.Check
		}
		report.FromLedger = true
		report.UnassignedCardAmount = spent.Unassigned
	}

	settlement, err := core.SimulateYearEndSettlement(req.TotalSalary, credit, check)
	if err != nil {
		return YearEndReport{}, err
	}
	report.YearEndSettlement = settlement

	slog.InfoContext(ctx, "Year-end settlement simulated",
		"year", year,
		"from_ledger", report.FromLedger,
		"deduction", settlement.EstimatedDeduction.String())
	return report, nil
}

// CardSpending sums the confirmed CARD entries of year whose category is an
// expense, by the type of the card they were paid with.
func (s *TaxService) CardSpending(ctx context.Context, year int) (CardSpending, error) {
	spent := CardSpending{Credit: decimal.Zero, Check: decimal.Zero, Unassigned: decimal.Zero}
	confirmed := true
	filter := storage.EntryFilter{
		From:          core.NewDate(year, time.January, 1),
		To:            core.NewDate(year, time.December, 31),
		PaymentMethod: core.PayCard,
		Confirmed:     &confirmed,
	}

	err := s.uow.WithinTx(ctx, func(tx storage.Tx) error {
		entries, err := tx.ListEntries(ctx, filter)
		if err != nil {
			return err
		}
		cards, err := tx.ListCards(ctx)
		if err != nil {
			return err
		}
		categories, err := tx.ListCategories(ctx)
		if err != nil {
			return err
		}

		cardTypes := make(map[int64]core.CardType, len(cards))
		for _, c := range cards {
			cardTypes[c.ID] = c.Type
		}
		kinds := make(map[int64]core.CategoryType, len(categories))
		for _, c := range categories {
			kinds[c.ID] = core.EffectiveKind(c)
		}

		for _, e := range entries {
			if kinds[e.CategoryID] != core.Expense {
				continue
			}
			var t core.CardType
			if e.CardID != nil {
				t = cardTypes[*e.CardID]
			}
			switch t {
			case core.CreditCard:
				spent.Credit = spent.Credit.Add(e.Amount)
			case core.CheckCard:
				spent.Check = spent.Check.Add(e.Amount)
			default:
				spent.Unassigned = spent.Unassigned.Add(e.Amount)
			}
		}
		return nil
	})
	if err != nil {
		return CardSpending{}, fmt.Errorf("sum card spending of %d: %w", year, err)
	}
	return spent, nil
}

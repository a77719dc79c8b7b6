package main

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"gagyebu/internal/services"
)

type TaxCmd struct {
	Stock   TaxStockCmd   `cmd:"" help:"Estimate capital gains tax on realized stock profit."`
	YearEnd TaxYearEndCmd `cmd:"" name:"year-end" help:"Simulate the year-end card spending deduction."`
}

type TaxStockCmd struct {
	Sell string `required:"" help:"Total sell amount in won."`
	Buy  string `required:"" help:"Total buy amount in won."`
}

func (c *TaxStockCmd) Run(rt *runtime) error {
	sell, err := parseWon("sell", c.Sell)
	if err != nil {
		return err
	}
	buy, err := parseWon("buy", c.Buy)
	if err != nil {
		return err
	}
	st, err := rt.ledger.Tax.StockTax(rt.ctx, services.StockTaxRequest{TotalSellAmount: sell, TotalBuyAmount: buy})
	if err != nil {
		return err
	}
	return rt.emit(st, func(w io.Writer) error {
		return printSuccess(w, "profit %s, taxable %s, estimated tax %s", won(st.Profit), won(st.TaxBase), won(st.EstimatedTax))
	})
}

type TaxYearEndCmd struct {
	Salary string `required:"" help:"Gross salary of the year in won."`
	Year   int    `help:"Settlement year, defaults to the current one."`
	Credit string `help:"Credit card spending; summed from the ledger when empty."`
	Debit  string `help:"Check card and cash receipt spending; summed from the ledger when empty."`
}

func (c *TaxYearEndCmd) Run(rt *runtime) error {
	req := services.YearEndRequest{Year: c.Year}
	var err error
	if req.TotalSalary, err = parseWon("salary", c.Salary); err != nil {
		return err
	}
	for _, opt := range []struct {
		flag string
		raw  string
		dst  *decimal.NullDecimal
	}{
		{"credit", c.Credit, &req.CreditCardAmount},
		{"debit", c.Debit, &req.DebitCashAmount},
	} {
		if opt.raw == "" {
			continue
		}
		v, err := parseWon(opt.flag, opt.raw)
		if err != nil {
			return err
		}
		*opt.dst = decimal.NewNullDecimal(v)
	}

	report, err := rt.ledger.Tax.YearEnd(rt.ctx, req)
	if err != nil {
		return err
	}
	return rt.emit(report, func(w io.Writer) error {
		if err := printSuccess(w, "%d settlement: threshold %s, estimated deduction %s",
			report.Year, won(report.MinUsageThreshold), won(report.EstimatedDeduction)); err != nil {
			return err
		}
		switch {
		case report.UntilThreshold.IsPositive():
			_, err = fmt.Fprintf(w, "  %s more spending before anything is deducted\n", won(report.UntilThreshold))
		case report.MissedDeduction.IsPositive():
			_, err = fmt.Fprintf(w, "  check cards instead of credit above the threshold would have added %s\n", won(report.MissedDeduction))
		}
		return err
	})
}

func parseWon(flag, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("--%s: %q is not an amount", flag, raw)
	}
	return v, nil
}

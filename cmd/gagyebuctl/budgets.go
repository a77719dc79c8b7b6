package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gagyebu/internal/services"
)

type BudgetsCmd struct {
	Year  int `required:"" help:"Budget year."`
	Month int `required:"" help:"Budget month, 1-12."`
}

func (c *BudgetsCmd) Run(rt *runtime) error {
	list, err := rt.ledger.Budgets.Month(rt.ctx, c.Year, c.Month)
	if err != nil {
		return err
	}
	if list == nil {
		list = []services.BudgetStatus{}
	}
	return rt.emit(list, func(w io.Writer) error {
		if len(list) == 0 {
			_, err := fmt.Fprintf(w, "no budgets for %04d-%02d\n", c.Year, c.Month)
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tBUDGET\tSPENT\tREMAINING")
		for _, b := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.CategoryName, won(b.Amount), won(b.Spent), won(b.Remaining))
		}
		return tw.Flush()
	})
}

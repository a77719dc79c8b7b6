package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"gagyebu/internal/backend"
	"gagyebu/internal/core"
)

// runtime is bound into every command's Run method.
type runtime struct {
	ctx    context.Context
	ledger *backend.Ledger
	out    io.Writer
	json   bool
}

// emit prints v as JSON when --json is set, otherwise calls text.
func (rt *runtime) emit(v any, text func(w io.Writer) error) error {
	if rt.json {
		enc := json.NewEncoder(rt.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(rt.out)
}

type ApplyAllCmd struct{}

func (c *ApplyAllCmd) Run(rt *runtime) error {
	summary, err := rt.ledger.Recurring.ApplyAll(rt.ctx)
	if perr := rt.emit(summary, func(w io.Writer) error {
		return printSuccess(w, "applied %d, expired and deleted %d", summary.AppliedCount, summary.ExpiredDeletedCount)
	}); perr != nil {
		return perr
	}
	return err
}

type ApplyCmd struct {
	ID int64 `arg:"" help:"Recurring template ID."`
}

func (c *ApplyCmd) Run(rt *runtime) error {
	summary, err := rt.ledger.Recurring.ApplyOne(rt.ctx, c.ID)
	if err != nil && !errors.Is(err, core.ErrTemplateExpired) {
		return err
	}
	return rt.emit(summary, func(w io.Writer) error {
		if summary.ExpiredDeletedCount > 0 {
			return printSuccess(w, "template %d has expired and was deleted", c.ID)
		}
		return printSuccess(w, "template %d applied", c.ID)
	})
}

type ConfirmCmd struct {
	ID int64 `arg:"" help:"Entry ID."`
}

func (c *ConfirmCmd) Run(rt *runtime) error {
	e, err := rt.ledger.Entries.Confirm(rt.ctx, c.ID)
	if err != nil {
		return err
	}
	return rt.emit(e, func(w io.Writer) error {
		return printSuccess(w, "entry %d confirmed: %s %s %s", e.ID, e.Date, won(e.Amount), e.Memo)
	})
}

type NetWorthCmd struct{}

func (c *NetWorthCmd) Run(rt *runtime) error {
	nw, err := rt.ledger.Assets.NetWorth(rt.ctx)
	if err != nil {
		return err
	}
	return rt.emit(nw, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
		types := make([]core.AssetType, 0, len(nw.ByType))
		for t := range nw.ByType {
			types = append(types, t)
		}
		slices.Sort(types)
		for _, t := range types {
			fmt.Fprintf(tw, "%s\t%s\t\n", t, won(nw.ByType[t]))
		}
		fmt.Fprintf(tw, "assets\t%s\t\n", won(nw.TotalAssets))
		fmt.Fprintf(tw, "liabilities\t%s\t\n", won(nw.TotalLiabilities))
		fmt.Fprintf(tw, "net worth\t%s\t\n", won(nw.NetWorth))
		return tw.Flush()
	})
}

type PlannedCmd struct{}

func (c *PlannedCmd) Run(rt *runtime) error {
	entries, err := rt.ledger.Entries.ListPlanned(rt.ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []core.Entry{}
	}
	return rt.emit(entries, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "no planned entries")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tMETHOD\tMEMO")
		for _, e := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Date, won(e.Amount), e.PaymentMethod, e.Memo)
		}
		return tw.Flush()
	})
}

type Commands struct {
	ApplyAll ApplyAllCmd `cmd:"" name:"apply-all" help:"Materialize every recurring template for the current month."`
	Apply    ApplyCmd    `cmd:"" help:"Materialize one recurring template for the current month."`
	Confirm  ConfirmCmd  `cmd:"" help:"Confirm a planned entry and apply it to its assets."`
	NetWorth NetWorthCmd `cmd:"" name:"net-worth" help:"Show asset totals and net worth."`
	Planned  PlannedCmd  `cmd:"" help:"List unconfirmed entries dated after today."`
	Tax      TaxCmd      `cmd:"" help:"Tax estimates."`
	Budgets  BudgetsCmd  `cmd:"" help:"Show a month's budgets against confirmed spending."`
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cashlens/internal/cli"
	"cashlens/internal/core"
	"cashlens/internal/filter"
)

func budgetCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"budgets"},
		Short:   "Set and check per-category spending limits",
	}
	cmd.AddCommand(budgetSetCmd(e))
	cmd.AddCommand(budgetStatusCmd(e))
	return cmd
}

func budgetSetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <amount>",
		Short: "Set a category's limit; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := core.ParseAmount(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			info, ok := app.Store.LookupCategory(args[0])
			if !ok {
				return fmt.Errorf("unknown category %q", args[0])
			}
			if err := app.Service.SetBudget(cmd.Context(), info.ID, limit); err != nil {
				return err
			}

			symbol := app.Store.UserProfile().Currency.Symbol
			msg := fmt.Sprintf("Budget for %s set to %s", info.Name, limit.Format(symbol))
			if limit.IsZero() {
				msg = "Budget for " + info.Name + " removed"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(msg))
			return nil
		},
	}
}

func budgetStatusCmd(e *env) *cobra.Command {
	var frame string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare spend with each category's limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tf, err := filter.ParseTimeFrame(frame)
			if err != nil {
				return err
			}

			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			app.Store.SetTimeFrame(tf)
			symbol := app.Store.UserProfile().Currency.Symbol

			tbl := cli.NewTable(cmd.OutOrStdout(), "Category", "Spent", "Limit", "Used", "", "Status")
			for _, st := range app.Store.BudgetStatuses(time.Now()) {
				if !st.HasLimit() {
					tbl.Row(st.Category.Name(), st.Spent.Format(symbol), "-", "-", "", cli.SubtleStyle.Render("no limit"))
					continue
				}
				status := cli.SuccessStyle.Render(st.Remaining().Format(symbol) + " left")
				if st.Over {
					status = cli.ErrorStyle.Render("over by " + st.OverBy.Format(symbol))
				}
				tbl.Row(st.Category.Name(), st.Spent.Format(symbol), st.Limit.Format(symbol),
					strconv.Itoa(st.Percentage)+"%", cli.Bar(float64(st.Percentage), 20), status)
			}
			return tbl.Flush()
		},
	}
	cmd.Flags().StringVarP(&frame, "frame", "f", string(filter.ThisMonth), "time frame (today, this-week, this-month, this-year)")
	return cmd
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cashlens/internal/cli"
	"cashlens/internal/core"
	"cashlens/internal/filter"
	"cashlens/internal/store"
)

const dateLayout = "2006-01-02"

func expenseCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses"},
		Short:   "Record, list and delete expenses",
	}
	cmd.AddCommand(expenseAddCmd(e))
	cmd.AddCommand(expenseListCmd(e))
	cmd.AddCommand(expenseDeleteCmd(e))
	cmd.AddCommand(expenseClearCmd(e))
	return cmd
}

func expenseAddCmd(e *env) *cobra.Command {
	var (
		category string
		date     string
		notes    string
	)
	cmd := &cobra.Command{
		Use:   "add <title> <amount>",
		Short: "Record a new expense",
		Long: `Record a new expense. The amount accepts a decimal point or comma
(12.50 or 12,50). The date defaults to today.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseDecimalToCents(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			when, err := parseDate(date)
			if err != nil {
				return err
			}

			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			info, ok := app.Store.LookupCategory(category)
			if !ok {
				return fmt.Errorf("unknown category %q (see 'cashlens category list')", category)
			}

			exp, err := app.Service.CreateExpense(cmd.Context(), core.ExpenseDraft{
				Title:    args[0],
				Amount:   core.Money{Cents: cents},
				Category: info.Category(),
				Date:     when,
				Notes:    notes,
			})
			if err != nil {
				return err
			}

			symbol := app.Store.UserProfile().Currency.Symbol
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(
				fmt.Sprintf("Added %s: %s (%s)", exp.ID, exp.Title, exp.Amount.Format(symbol))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", core.FallbackCategoryID, "category name")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-form notes")
	return cmd
}

// viewFlags are the filter controls shared by list, stats, budget status
// and export.
type viewFlags struct {
	frame    string
	category string
	search   string
	sort     string
}

func (f *viewFlags) register(cmd *cobra.Command, defaultFrame filter.TimeFrame) {
	cmd.Flags().StringVarP(&f.frame, "frame", "f", string(defaultFrame), "time frame (today, this-week, this-month, this-year)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "only this category")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive match on title or category")
	cmd.Flags().StringVar(&f.sort, "sort", string(filter.DateDesc), "sort order (date-desc, date-asc, amount-desc, amount-asc, title-asc)")
}

// apply pushes the flags into the store's filter state.
func (f *viewFlags) apply(st *store.Store) error {
	tf, err := filter.ParseTimeFrame(f.frame)
	if err != nil {
		return err
	}
	order, err := filter.ParseSortOrder(f.sort)
	if err != nil {
		return err
	}
	st.SetTimeFrame(tf)
	st.SetSortOrder(order)
	st.SetSearchQuery(f.search)

	if f.category == "" {
		st.FilterByCategory(nil)
		return nil
	}
	info, ok := st.LookupCategory(f.category)
	if !ok {
		return fmt.Errorf("unknown category %q", f.category)
	}
	c := info.Category()
	st.FilterByCategory(&c)
	return nil
}

func expenseListCmd(e *env) *cobra.Command {
	var vf viewFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List expenses in a time frame",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			if err := vf.apply(app.Store); err != nil {
				return err
			}
			view := app.Store.View(time.Now())
			out := cmd.OutOrStdout()
			if len(view.Expenses) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No expenses found. Use 'cashlens expense add' to record one."))
				return nil
			}

			symbol := app.Store.UserProfile().Currency.Symbol
			tbl := cli.NewTable(out, "ID", "Date", "Title", "Category", "Amount", "Notes")
			for _, x := range view.Expenses {
				tbl.Row(x.ID, x.Date.Format(dateLayout), x.Title, x.Category.Name(), x.Amount.Format(symbol), x.Notes)
			}
			if err := tbl.Flush(); err != nil {
				return fmt.Errorf("failed to write table: %w", err)
			}
			fmt.Fprintf(out, "\n%s %s (%d expenses)\n",
				cli.TitleStyle.Render("Total:"), view.Total.Format(symbol), len(view.Expenses))
			return nil
		},
	}
	vf.register(cmd, filter.ThisMonth)
	return cmd
}

func expenseDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete expenses by ID",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			out := cmd.OutOrStdout()
			for _, id := range args {
				removed, err := app.Service.DeleteExpense(cmd.Context(), id)
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintln(out, cli.SuccessStyle.Render("Deleted "+id))
				} else {
					fmt.Fprintln(out, cli.WarningStyle.Render("No expense with ID "+id))
				}
			}
			return nil
		},
	}
}

func expenseClearCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every expense",
		Long:  `Delete every recorded expense. Categories, budget limits and the profile are kept.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear all expenses without --yes")
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			n := len(app.Store.Expenses())
			if err := app.Service.ClearExpenses(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Cleared %d expenses", n)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

// parseDate reads YYYY-MM-DD in local time; empty means now.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

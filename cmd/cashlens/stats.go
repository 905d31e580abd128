package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cashlens/internal/cli"
	"cashlens/internal/filter"
)

func statsCmd(e *env) *cobra.Command {
	var vf viewFlags
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Spending by category and by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			if err := vf.apply(app.Store); err != nil {
				return err
			}
			now := time.Now()
			view := app.Store.View(now)
			symbol := app.Store.UserProfile().Currency.Symbol
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s %s\n\n", cli.TitleStyle.Render("Total spent:"), view.Total.Format(symbol))

			ranked := view.Ranked()
			if len(ranked) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("Nothing spent in this period."))
				return nil
			}

			fmt.Fprintln(out, cli.TitleStyle.Render("By category"))
			tbl := cli.NewTable(out, "Category", "Amount", "Share", "")
			for _, ct := range ranked {
				tbl.Row(ct.Category.Name(), ct.Total.Format(symbol), fmt.Sprintf("%.1f%%", ct.Percentage), cli.Bar(ct.Percentage, 20))
			}
			if err := tbl.Flush(); err != nil {
				return err
			}

			series := app.Store.DailySeries(now)
			if len(series) == 0 {
				return nil
			}
			var peak int64
			for _, d := range series {
				peak = max(peak, d.Amount.Cents)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.TitleStyle.Render("By day"))
			tbl = cli.NewTable(out, "Day", "Amount", "")
			for _, d := range series {
				tbl.Row(d.Day.Format(dateLayout), d.Amount.Format(symbol), cli.Bar(float64(d.Amount.Cents)/float64(peak)*100, 20))
			}
			return tbl.Flush()
		},
	}
	vf.register(cmd, filter.ThisMonth)
	return cmd
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cashlens/internal/cli"
	"cashlens/internal/export"
	"cashlens/internal/filter"
	"cashlens/internal/log"
)

func exportCmd(e *env) *cobra.Command {
	var (
		vf     viewFlags
		format string
		dir    string
		name   string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write expenses to a CSV, JSON, YAML or PDF file",
		Long: `Write expenses to a file. By default the filtered view is exported
(see --frame, --category, --search); --all exports every expense in the
order they were recorded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exp, err := export.ByFormat(format)
			if err != nil {
				return err
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			// The PDF core fonts lack most currency glyphs, so the ISO code is used.
			if pdf, ok := exp.(export.PDF); ok {
				pdf.Symbol = app.Store.UserProfile().Currency.Code + " "
				exp = pdf
			}

			expenses := app.Store.Expenses()
			if !all {
				if err := vf.apply(app.Store); err != nil {
					return err
				}
				expenses = app.Store.View(time.Now()).Expenses
			}

			if dir == "" {
				dir = e.cfg.ExportDir
			}
			if dir == "" {
				dir = "."
			}
			path, err := export.WriteFileWith(dir, name, exp, expenses)
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
			e.logger.Info("Expenses exported",
				log.FieldOperation, log.OpExport,
				log.FieldFormat, strings.ToLower(format),
				log.FieldCount, len(expenses),
				log.FieldPath, path)

			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(
				fmt.Sprintf("Exported %d expenses to %s", len(expenses), path)))
			return nil
		},
	}
	vf.register(cmd, filter.ThisYear)
	cmd.Flags().StringVar(&format, "format", "csv", "output format ("+strings.Join(export.Formats, ", ")+")")
	cmd.Flags().StringVarP(&dir, "dir", "o", "", "output directory (default EXPORT_DIR or the current directory)")
	cmd.Flags().StringVar(&name, "name", "", "file name without extension (default expenses-<timestamp>)")
	cmd.Flags().BoolVar(&all, "all", false, "export every expense, ignoring filters")
	return cmd
}

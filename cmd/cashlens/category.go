package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cashlens/internal/cli"
	"cashlens/internal/core"
	"cashlens/internal/filter"
	"cashlens/internal/store"
)

func categoryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage expense categories",
		Long:    `List, add and delete categories. The four built-in categories cannot be deleted.`,
	}
	cmd.AddCommand(categoryListCmd(e))
	cmd.AddCommand(categoryAddCmd(e))
	cmd.AddCommand(categoryDeleteCmd(e))
	return cmd
}

func categoryListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories with this month's spend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			app.Store.SetTimeFrame(filter.ThisMonth)
			view := app.Store.View(time.Now())
			symbol := app.Store.UserProfile().Currency.Symbol

			tbl := cli.NewTable(cmd.OutOrStdout(), "ID", "Name", "Color", "Icon", "Type", "This month")
			for _, c := range app.Store.Categories() {
				kind := "built-in"
				if c.Custom {
					kind = "custom"
				}
				tbl.Row(c.ID, c.Name, c.Color, c.Icon, kind, view.CategoryTotal(c.Category()).Format(symbol))
			}
			return tbl.Flush()
		},
	}
}

func categoryAddCmd(e *env) *cobra.Command {
	var color, icon string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			info, err := app.Service.CreateCategory(cmd.Context(), core.CategoryDraft{
				Name:  args[0],
				Color: color,
				Icon:  icon,
			})
			if errors.Is(err, store.ErrDuplicateCategory) {
				return fmt.Errorf("category %q already exists", core.NormalizeCategoryName(args[0]))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(
				fmt.Sprintf("Added category %s (%s)", info.Name, info.ID)))
			return nil
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "hex color, e.g. #A1B2C3")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name")
	return cmd
}

func categoryDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a custom category",
		Long: `Delete a custom category. Expenses recorded under it keep their category
name and budget limits set for it are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			id := args[0]
			if info, ok := app.Store.LookupCategory(id); ok {
				id = info.ID
			}
			removed, err := app.Service.DeleteCategory(cmd.Context(), id)
			if errors.Is(err, store.ErrDefaultCategory) {
				return fmt.Errorf("%s is a built-in category and cannot be deleted", id)
			}
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), cli.WarningStyle.Render("No category "+args[0]))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Deleted category "+args[0]))
			return nil
		},
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cashlens/internal/cli"
	"cashlens/internal/core"
)

func profileCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the user profile",
	}
	cmd.AddCommand(profileShowCmd(e))
	cmd.AddCommand(profileSetCmd(e))
	return cmd
}

func profileShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			printProfile(cmd, app.Store.UserProfile())
			return nil
		},
	}
}

func profileSetCmd(e *env) *cobra.Command {
	var (
		name        string
		currency    string
		theme       string
		toggleTheme bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change name, currency or theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var u core.ProfileUpdate
			if cmd.Flags().Changed("name") {
				u.Name = &name
			}
			if cmd.Flags().Changed("currency") {
				c, ok := core.LookupCurrency(currency)
				if !ok {
					return fmt.Errorf("%w: %s (see 'cashlens currencies')", core.ErrInvalidCurrency, currency)
				}
				u.Currency = &c
			}
			if cmd.Flags().Changed("theme") {
				t := core.Theme(strings.ToLower(strings.TrimSpace(theme)))
				u.Theme = &t
			}

			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, e.logger)

			if toggleTheme && u.Theme == nil {
				t := app.Store.UserProfile().Theme.Toggle()
				u.Theme = &t
			}
			if u.IsZero() {
				return fmt.Errorf("nothing to change: pass --name, --currency, --theme or --toggle-theme")
			}

			p, err := app.Service.UpdateProfile(cmd.Context(), u)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Profile updated"))
			printProfile(cmd, p)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 code, e.g. EUR")
	cmd.Flags().StringVar(&theme, "theme", "", "light or dark")
	cmd.Flags().BoolVar(&toggleTheme, "toggle-theme", false, "switch between light and dark")
	return cmd
}

func printProfile(cmd *cobra.Command, p core.UserProfile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", cli.TitleStyle.Render("Name:    "), p.Name)
	fmt.Fprintf(out, "%s %s (%s %s)\n", cli.TitleStyle.Render("Currency:"), p.Currency.Code, p.Currency.Symbol, p.Currency.Name)
	fmt.Fprintf(out, "%s %s\n", cli.TitleStyle.Render("Theme:   "), p.Theme)
}

func currenciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List supported currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl := cli.NewTable(cmd.OutOrStdout(), "Code", "Symbol", "Name")
			for _, c := range core.Currencies {
				tbl.Row(c.Code, c.Symbol, c.Name)
			}
			return tbl.Flush()
		},
	}
}

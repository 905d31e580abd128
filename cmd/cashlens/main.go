package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cashlens/internal/cli"
	"cashlens/internal/config"
	"cashlens/internal/log"
)

var version = "dev"

// env is what PersistentPreRunE resolves for the subcommands.
type env struct {
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "cashlens",
		Short: "Personal expense tracker",
		Long: `cashlens records expenses, groups them by category, tracks monthly
budget limits and exports what you spent.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&e.cfgFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json)")

	root.AddCommand(expenseCmd(e))
	root.AddCommand(categoryCmd(e))
	root.AddCommand(budgetCmd(e))
	root.AddCommand(profileCmd(e))
	root.AddCommand(currenciesCmd())
	root.AddCommand(statsCmd(e))
	root.AddCommand(exportCmd(e))
	root.AddCommand(versionCmd())
	return root
}

func main() {
	cli.LoadEnvFile()

	ctx, cancel := cli.SignalContext(context.Background(), log.Discard())
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func (e *env) init(cmd *cobra.Command) error {
	v, err := config.NewViper(e.cfgFile)
	if err != nil {
		return err
	}

	// Interactive runs stay quiet unless asked otherwise.
	v.SetDefault(config.KeyLogLevel, "warn")

	// Flags only win when set explicitly; env and config file come first otherwise.
	flags := cmd.Root().PersistentFlags()
	if f := flags.Lookup("log-level"); f.Changed {
		v.Set(config.KeyLogLevel, f.Value.String())
	}
	if f := flags.Lookup("log-format"); f.Changed {
		v.Set(config.KeyLogFormat, f.Value.String())
	}

	cfg := config.FromViper(v)
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = cli.SetupLogger(cfg).WithComponent(log.ComponentCLI)
	return nil
}

// open loads the store for one command invocation. Callers must Close it.
func (e *env) open(cmd *cobra.Command) (*cli.App, error) {
	app, err := cli.OpenApp(cmd.Context(), e.cfg, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open expense store: %w", err)
	}
	return app, nil
}

func closeApp(app *cli.App, logger *log.Logger) {
	if err := app.Close(); err != nil {
		logger.Error("failed to close storage", log.FieldError, err)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cashlens %s\n", version)
		},
	}
}

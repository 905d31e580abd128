// Package cli provides common initialization shared by cmd/cashlens and
// cmd/cashlens-sync.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cashlens/internal/backend"
	"cashlens/internal/cache"
	"cashlens/internal/config"
	"cashlens/internal/filter"
	"cashlens/internal/log"
	"cashlens/internal/services"
	"cashlens/internal/store"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from config and makes it the
// slog default. An unknown level falls back to info.
func SetupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	if cfg != nil {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			lc.Level = level
		}
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig(configFile string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App bundles what a command needs to read and mutate expenses.
type App struct {
	Store   *store.Store
	Service *services.ExpenseService
	Logger  *log.Logger

	cleanup backend.CleanupFunc
}

// Close releases the storage and the broker connection.
func (a *App) Close() error {
	if a == nil || a.cleanup == nil {
		return nil
	}
	return a.cleanup()
}

// OpenApp creates the configured backend and loads the store from it.
func OpenApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	return OpenAppWith(ctx, backend.NewFactory(logger), cfg, logger)
}

// OpenAppWith is OpenApp with an explicit backend factory.
func OpenAppWith(ctx context.Context, factory backend.Factory, cfg *config.Config, logger *log.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	opts := []store.Option{store.WithLogger(logger)}
	if cfg.ViewCacheSize > 0 {
		opts = append(opts, store.WithViewCache(cache.NewLRUCache[filter.Result](cfg.ViewCacheSize, cfg.ViewCacheTTL)))
	}
	st, err := store.Open(ctx, res.KV, opts...)
	if err != nil {
		return nil, errors.Join(err, res.Cleanup())
	}

	return &App{
		Store:   st,
		Service: services.NewExpenseService(st, res.Publisher, logger),
		Logger:  logger,
		cleanup: res.Cleanup,
	}, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Command cashlens-sync mirrors the expense collection onto a spreadsheet.
// It replays change events from the broker and periodically reconciles the
// mirror against the stored collection to repair anything it missed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cashlens/internal/amqp"
	"cashlens/internal/backend"
	"cashlens/internal/cli"
	"cashlens/internal/config"
	"cashlens/internal/log"
	"cashlens/internal/storage"
	"cashlens/internal/store"
	"cashlens/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	configFile := flag.String("config", "", "config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := cli.LoadAndValidateConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentWorker)

	if err := cfg.ValidateSync(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Sync worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	logger.Info("Starting cashlens-sync", log.FieldOperation, log.OpStartup)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// The broker connection is opened below as a consumer, not through the
	// factory's publisher.
	bcfg.AMQPURL = ""

	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	}()

	mirror, err := factory.CreateMirror(ctx, bcfg)
	if err != nil {
		return err
	}
	defer mirror.Cleanup()

	if h, ok := mirror.Mirror.(interface{ EnsureHeader(context.Context) error }); ok {
		if err := h.EnsureHeader(ctx); err != nil {
			return fmt.Errorf("prepare sheet: %w", err)
		}
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize AMQP client: %w", err)
	}
	defer consumer.Close()

	syncWorker := worker.NewSyncWorker(mirror.Mirror, logger)
	recon := func(ctx context.Context) error {
		_, err := reconcile(ctx, res.KV, syncWorker, logger)
		return err
	}

	// A failed startup pass is repaired by the next periodic one.
	if err := recon(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldOperation, log.OpStartup, log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.ConsumeChanges(gctx, syncWorker.HandleChange)
	})
	g.Go(func() error {
		return reconcileEvery(gctx, cfg.SyncInterval, recon, logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// reconcile reloads the collection from storage, since the tracker runs in
// another process, and brings the mirror in line with it.
func reconcile(ctx context.Context, kv storage.KV, w *worker.SyncWorker, logger *log.Logger) (worker.ReconcileResult, error) {
	st, err := store.Open(ctx, kv, store.WithLogger(logger))
	if err != nil {
		return worker.ReconcileResult{}, err
	}
	return w.StartupSync(ctx, st.Expenses())
}

// reconcileEvery runs fn on every tick until ctx is done. Errors are logged;
// a zero interval disables the loop.
func reconcileEvery(ctx context.Context, interval time.Duration, fn func(context.Context) error, logger *log.Logger) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				logger.Error("Periodic sync failed", log.FieldOperation, log.OpSync, log.FieldError, err)
			}
		}
	}
}

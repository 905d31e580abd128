package backend

import (
	"context"
	"errors"
	"fmt"

	"cashlens/internal/amqp"
	"cashlens/internal/log"
	"cashlens/internal/services"
	gsheet "cashlens/internal/sheets/google"
	mirrormem "cashlens/internal/sheets/memory"
	"cashlens/internal/storage"
	"cashlens/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger

	// dial is swapped in tests to avoid a live broker.
	dial func(url, exchange, queue string, logger *log.Logger) (*amqp.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		dial:   amqp.NewClient,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		kv      storage.KV
		closeKV CleanupFunc
	)
	switch config.Type {
	case SQLiteBackend:
		sqliteKV, err := storage.NewSQLiteKV(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		kv, closeKV = sqliteKV, sqliteKV.Close
		f.logger.InfoContext(ctx, "Initialized SQLite backend", log.FieldPath, config.SQLiteDBPath)
	case MemoryBackend:
		dataDir := config.DataDirectory
		if dataDir == "" {
			dataDir = "data"
		}
		kv = memory.NewFromFiles(dataDir)
		f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", dataDir)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	// AMQP is optional: a broker outage must not keep the tracker from starting.
	var client *amqp.Client
	if config.AMQPURL != "" {
		c, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync",
				log.FieldError, err)
		} else {
			client = c
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	res := &BackendResult{KV: kv}
	if client != nil {
		res.Publisher = client
	}
	res.Cleanup = func() error {
		var errs []error
		if client != nil {
			errs = append(errs, client.Close())
		}
		if closeKV != nil {
			errs = append(errs, closeKV())
		}
		return errors.Join(errs...)
	}
	return res, nil
}

// CreateMirror implements Factory.CreateMirror. Without a spreadsheet the
// mirror lives in process memory, which is only useful for local runs.
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (*MirrorResult, error) {
	if config.GoogleSpreadsheetID == "" {
		f.logger.WarnContext(ctx, "No spreadsheet configured, mirroring to memory")
		return &MirrorResult{Mirror: mirrormem.New(), Cleanup: func() error { return nil }}, nil
	}

	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountFile: config.GoogleServiceAccountFile,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)

	return &MirrorResult{Mirror: cli, Remote: true, Cleanup: func() error { return nil }}, nil
}

var _ services.ChangePublisher = (*amqp.Client)(nil)

package backend

import (
	"context"

	"cashlens/internal/services"
	"cashlens/internal/sheets"
	"cashlens/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the storage, the optional change publisher and a
// cleanup function releasing both.
type BackendResult struct {
	KV        storage.KV
	// Publisher is nil when no broker is configured.
	Publisher services.ChangePublisher
	Cleanup   CleanupFunc
}

// MirrorResult holds the spreadsheet-side replica used by the sync worker.
type MirrorResult struct {
	Mirror  sheets.ExpenseMirror
	// Remote is false for the in-process mirror.
	Remote  bool
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates the key-value storage and publisher
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateMirror creates the mirror the sync worker replays changes onto
	CreateMirror(ctx context.Context, config Config) (*MirrorResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	DataDirectory string

	// Change feed, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror, optional
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

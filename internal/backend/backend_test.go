package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashlens/internal/amqp"
	"cashlens/internal/config"
	"cashlens/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.ErrorContains(t, err, "invalid backend type in config: sheets")

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "memory",
		DataDirectory:       "/tmp/seed",
		AMQPURL:             "amqp://localhost:5672/",
		AMQPExchange:        "cashlens",
		AMQPQueue:           "sync_expenses",
		GoogleSpreadsheetID: "sheet-id",
		GoogleSheetName:     "Expenses",
	})
	require.NoError(t, err)
	assert.Equal(t, MemoryBackend, cfg.Type)
	assert.Equal(t, "/tmp/seed", cfg.DataDirectory)
	assert.Equal(t, "sync_expenses", cfg.AMQPQueue)
	assert.Equal(t, "sheet-id", cfg.GoogleSpreadsheetID)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"memory", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "sheets"}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://x", AMQPExchange: "e"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "userProfile.json"), []byte(`{"name":"Ada"}`), 0644))

	f := NewFactory(log.Discard())
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	require.NoError(t, err)
	defer res.Cleanup()

	assert.Nil(t, res.Publisher)
	v, ok, err := res.KV.Get(context.Background(), "userProfile")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"Ada"}`, v)
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cashlens.db")

	f := NewFactory(nil)
	res, err := f.CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, res.KV.Set(ctx, "expenses", "[]"))
	require.NoError(t, res.Cleanup())

	res, err = f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	defer res.Cleanup()
	v, ok, err := res.KV.Get(ctx, "expenses")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestCreateBackendContinuesWithoutBroker(t *testing.T) {
	f := NewFactory(log.Discard()).(*DefaultFactory)
	var dialed string
	f.dial = func(url, exchange, queue string, _ *log.Logger) (*amqp.Client, error) {
		dialed = url + "|" + exchange + "|" + queue
		return nil, errors.New("connection refused")
	}

	res, err := f.CreateBackend(context.Background(), Config{
		Type:          MemoryBackend,
		DataDirectory: t.TempDir(),
		AMQPURL:       "amqp://localhost:5672/",
		AMQPExchange:  "cashlens",
		AMQPQueue:     "sync_expenses",
	})
	require.NoError(t, err)
	defer res.Cleanup()

	assert.Equal(t, "amqp://localhost:5672/|cashlens|sync_expenses", dialed)
	assert.Nil(t, res.Publisher)
}

func TestCreateBackendInvalid(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "postgres"})
	assert.Error(t, err)
}

func TestCreateMirror(t *testing.T) {
	f := NewFactory(log.Discard())

	res, err := f.CreateMirror(context.Background(), Config{})
	require.NoError(t, err)
	assert.False(t, res.Remote)
	assert.NotNil(t, res.Mirror)
	assert.NoError(t, res.Cleanup())

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err = f.CreateMirror(context.Background(), Config{GoogleSpreadsheetID: "sheet-id"})
	assert.ErrorContains(t, err, "missing service account credentials")
}

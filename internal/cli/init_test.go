package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashlens/internal/config"
	"cashlens/internal/core"
	"cashlens/internal/log"
)

func memoryConfig(t *testing.T) *config.Config {
	return &config.Config{
		DataBackend:   "memory",
		DataDirectory: t.TempDir(),
		LogLevel:      "info",
		LogFormat:     "text",
		ViewCacheSize: 8,
		ViewCacheTTL:  time.Minute,
	}
}

func TestOpenApp(t *testing.T) {
	ctx := context.Background()
	app, err := OpenApp(ctx, memoryConfig(t), log.Discard())
	require.NoError(t, err)
	defer app.Close()

	e, err := app.Service.CreateExpense(ctx, core.ExpenseDraft{
		Title:    "Coffee",
		Amount:   core.Money{Cents: 250},
		Category: core.Food.Category(),
		Date:     time.Now(),
	})
	require.NoError(t, err)

	got, ok := app.Store.Expense(e.ID)
	require.True(t, ok)
	assert.Equal(t, "Coffee", got.Title)
	assert.Equal(t, "2.50", app.Store.TotalExpenses(time.Now()).String())
}

func TestOpenAppSeededFromFiles(t *testing.T) {
	cfg := memoryConfig(t)
	blob := `[{"id":"1","title":"Bread","amount":3.5,"category":"groceries","date":"2025-05-07T00:00:00.000Z"}]`
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDirectory, "expenses.json"), []byte(blob), 0644))

	app, err := OpenApp(context.Background(), cfg, log.Discard())
	require.NoError(t, err)
	defer app.Close()

	require.Len(t, app.Store.Expenses(), 1)
	assert.Equal(t, int64(350), app.Store.Expenses()[0].Amount.Cents)
}

func TestOpenAppCorruptData(t *testing.T) {
	cfg := memoryConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDirectory, "expenses.json"), []byte(`{oops`), 0644))

	_, err := OpenApp(context.Background(), cfg, log.Discard())
	assert.ErrorContains(t, err, "decode expenses")
}

func TestOpenAppInvalidBackend(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.DataBackend = "postgres"
	_, err := OpenApp(context.Background(), cfg, log.Discard())
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), -4))

	logger = SetupLogger(&config.Config{LogLevel: "bogus"})
	assert.False(t, logger.Enabled(context.Background(), -4))
}

func TestSignalContextCancel(t *testing.T) {
	ctx, cancel := SignalContext(context.Background(), log.Discard())
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", Bar(50, 0))
	assert.Equal(t, 5, strings.Count(Bar(50, 10), "█"))
	assert.Equal(t, 10, strings.Count(Bar(250, 10), "█"))
	assert.Equal(t, 0, strings.Count(Bar(-5, 10), "█"))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "ID", "Name")
	tbl.Row("1", "food")
	tbl.Row("2")
	require.NoError(t, tbl.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[2], "food")
}

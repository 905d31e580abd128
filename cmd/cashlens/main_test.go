package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashlens/internal/config"
)

var addedID = regexp.MustCompile(`Added (\S+):`)

// setupEnv points every invocation at a fresh SQLite file.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{
		config.KeyAMQPURL, config.KeyGoogleSpreadsheetID, config.KeyDataDirectory,
		config.KeyLogFormat, config.KeyViewCacheSize, config.KeyViewCacheTTL,
	} {
		t.Setenv(key, "")
	}
	t.Setenv(config.KeyDataBackend, "sqlite")
	t.Setenv(config.KeySQLiteDBPath, filepath.Join(dir, "cashlens.db"))
	t.Setenv(config.KeyExportDir, filepath.Join(dir, "exports"))
	t.Setenv(config.KeyLogLevel, "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "cashlens %v: %s", args, out)
	return out
}

func TestRootCmdHasSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]*cobra.Command{}
	for _, c := range root.Commands() {
		names[c.Name()] = c
	}
	for _, want := range []string{"expense", "category", "budget", "profile", "currencies", "stats", "export", "version"} {
		assert.Contains(t, names, want)
	}

	flag := root.PersistentFlags().Lookup("log-format")
	require.NotNil(t, flag)
	assert.Equal(t, "text", flag.DefValue)
}

func TestExpenseLifecycle(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "expense", "add", "Chocolate", "20", "--category", "Food")
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out = mustRun(t, "expense", "list")
	assert.Contains(t, out, "Chocolate")
	assert.Contains(t, out, "food")
	assert.Contains(t, out, "₹20.00")
	assert.Contains(t, out, "(1 expenses)")

	out = mustRun(t, "expense", "delete", id)
	assert.Contains(t, out, "Deleted "+id)
	out = mustRun(t, "expense", "delete", id)
	assert.Contains(t, out, "No expense with ID "+id)

	out = mustRun(t, "expense", "list")
	assert.Contains(t, out, "No expenses found")
}

func TestExpenseAddRejectsBadInput(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "expense", "add", "Lunch", "abc")
	assert.ErrorContains(t, err, "invalid amount")

	_, err = run(t, "expense", "add", "Lunch", "0")
	assert.ErrorContains(t, err, "invalid amount")

	_, err = run(t, "expense", "add", "Lunch", "12", "--category", "pets")
	assert.ErrorContains(t, err, `unknown category "pets"`)

	_, err = run(t, "expense", "add", "Lunch", "12", "--date", "07/05/2025")
	assert.ErrorContains(t, err, "invalid date")

	_, err = run(t, "expense", "add", "   ", "12")
	assert.Error(t, err)
}

func TestExpenseClearNeedsConfirmation(t *testing.T) {
	setupEnv(t)
	mustRun(t, "expense", "add", "Bus", "2,50", "-c", "transportation")

	_, err := run(t, "expense", "clear")
	assert.ErrorContains(t, err, "--yes")

	out := mustRun(t, "expense", "clear", "--yes")
	assert.Contains(t, out, "Cleared 1 expenses")
}

func TestCategoryCommands(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "category", "add", "Pets", "--color", "#A1B2C3")
	assert.Contains(t, out, "Added category pets")

	_, err := run(t, "category", "add", "PETS")
	assert.ErrorContains(t, err, `category "pets" already exists`)

	_, err = run(t, "category", "add", "Birds", "--color", "blue")
	assert.Error(t, err)

	out = mustRun(t, "category", "list")
	assert.Contains(t, out, "groceries")
	assert.Contains(t, out, "pets")
	assert.Contains(t, out, "custom")

	mustRun(t, "expense", "add", "Kibble", "15", "-c", "pets")

	_, err = run(t, "category", "delete", "food")
	assert.ErrorContains(t, err, "built-in")

	out = mustRun(t, "category", "delete", "pets")
	assert.Contains(t, out, "Deleted category pets")
	out = mustRun(t, "category", "delete", "pets")
	assert.Contains(t, out, "No category pets")

	// The expense keeps its category name after the category is gone.
	out = mustRun(t, "expense", "list")
	assert.Contains(t, out, "Kibble")
	assert.Contains(t, out, "pets")
}

func TestBudgetStatus(t *testing.T) {
	setupEnv(t)
	mustRun(t, "expense", "add", "Chocolate", "20", "-c", "food")
	mustRun(t, "expense", "add", "Dinner", "120", "-c", "food")
	mustRun(t, "expense", "add", "Milk", "1.50", "-c", "groceries")

	out := mustRun(t, "budget", "set", "food", "100")
	assert.Contains(t, out, "Budget for food set to ₹100.00")
	mustRun(t, "budget", "set", "groceries", "10")

	out = mustRun(t, "budget", "status")
	assert.Contains(t, out, "over by ₹40.00")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "₹8.50 left")
	assert.Contains(t, out, "no limit")

	out = mustRun(t, "budget", "set", "groceries", "0")
	assert.Contains(t, out, "Budget for groceries removed")

	_, err := run(t, "budget", "set", "ghosts", "5")
	assert.ErrorContains(t, err, "unknown category")
	_, err = run(t, "budget", "set", "food", "--", "-5")
	assert.ErrorContains(t, err, "invalid amount")
}

func TestProfileCommands(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "profile", "show")
	assert.Contains(t, out, "User")
	assert.Contains(t, out, "INR")

	out = mustRun(t, "profile", "set", "--name", "Ada", "--currency", "usd", "--theme", "dark")
	assert.Contains(t, out, "Profile updated")
	assert.Contains(t, out, "USD")

	out = mustRun(t, "profile", "set", "--toggle-theme")
	assert.Contains(t, out, "light")

	mustRun(t, "expense", "add", "Coffee", "3", "-c", "food")
	out = mustRun(t, "expense", "list")
	assert.Contains(t, out, "$3.00")

	_, err := run(t, "profile", "set", "--currency", "XXQ")
	assert.ErrorContains(t, err, "invalid currency")
	_, err = run(t, "profile", "set", "--theme", "sepia")
	assert.ErrorContains(t, err, "invalid theme")
	_, err = run(t, "profile", "set")
	assert.ErrorContains(t, err, "nothing to change")
}

func TestCurrencies(t *testing.T) {
	setupEnv(t)
	out := mustRun(t, "currencies")
	assert.Contains(t, out, "EUR")
	assert.Contains(t, out, "Indian Rupee")
}

func TestStats(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "stats")
	assert.Contains(t, out, "Nothing spent")

	mustRun(t, "expense", "add", "Chocolate", "20", "-c", "food")
	mustRun(t, "expense", "add", "Dinner", "120", "-c", "food")
	mustRun(t, "expense", "add", "Bus", "60", "-c", "transportation")

	out = mustRun(t, "stats")
	assert.Contains(t, out, "₹200.00")
	assert.Contains(t, out, "70.0%")
	assert.Contains(t, out, "30.0%")
	assert.Contains(t, out, "By day")

	_, err := run(t, "stats", "--frame", "last-decade")
	assert.ErrorContains(t, err, "unknown time frame")
}

func TestExport(t *testing.T) {
	dir := setupEnv(t)
	mustRun(t, "expense", "add", "Chocolate", "20", "-c", "food")
	mustRun(t, "expense", "add", "Bus", "2", "-c", "transportation")

	out := mustRun(t, "export", "--format", "json", "--name", "all", "--all")
	assert.Contains(t, out, "Exported 2 expenses")
	data, err := os.ReadFile(filepath.Join(dir, "exports", "all.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Chocolate")

	out = mustRun(t, "export", "--format", "csv", "--name", "food", "--category", "food", "-o", dir)
	assert.Contains(t, out, "Exported 1 expenses")
	data, err = os.ReadFile(filepath.Join(dir, "food.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Chocolate"`)
	assert.NotContains(t, string(data), "Bus")

	mustRun(t, "export", "--format", "pdf", "--name", "report")
	data, err = os.ReadFile(filepath.Join(dir, "exports", "report.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, err = run(t, "export", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestInvalidLogLevelFlag(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "--log-level", "loud", "currencies")
	assert.ErrorContains(t, err, "invalid log level 'loud'")
}

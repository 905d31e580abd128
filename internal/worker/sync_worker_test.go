package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashlens/internal/amqp"
	"cashlens/internal/core"
	"cashlens/internal/log"
	"cashlens/internal/sheets/memory"
)

func expense(id string) core.Expense {
	return core.Expense{
		ID:       id,
		Title:    "t-" + id,
		Amount:   core.Money{Cents: 1000},
		Category: core.Food.Category(),
		Date:     time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC),
	}
}

func ids(t *testing.T, m *memory.Store) []string {
	t.Helper()
	list, err := m.ListExpenses(context.Background())
	require.NoError(t, err)
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func TestHandleChange(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	w := NewSyncWorker(mirror, log.Discard())

	require.NoError(t, w.HandleChange(ctx, amqp.ExpenseCreated(expense("a"))))
	require.NoError(t, w.HandleChange(ctx, amqp.ExpenseCreated(expense("b"))))
	assert.Equal(t, []string{"a", "b"}, ids(t, mirror))

	require.NoError(t, w.HandleChange(ctx, amqp.ExpenseDeleted("a")))
	assert.Equal(t, []string{"b"}, ids(t, mirror))

	// Events outside the expense list are ignored.
	require.NoError(t, w.HandleChange(ctx, amqp.NewChangeEvent(amqp.KindProfileUpdated)))
	assert.Equal(t, 1, mirror.Len())

	require.NoError(t, w.HandleChange(ctx, amqp.NewChangeEvent(amqp.KindExpensesCleared)))
	assert.Zero(t, mirror.Len())

	err := w.HandleChange(ctx, amqp.NewChangeEvent(amqp.KindExpenseCreated))
	assert.Error(t, err)
}

type failingMirror struct{ err error }

func (f failingMirror) AppendExpense(context.Context, core.Expense) error { return f.err }
func (f failingMirror) DeleteExpense(context.Context, string) error       { return f.err }
func (f failingMirror) Clear(context.Context) error                       { return f.err }

func TestHandleChangeMirrorFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewSyncWorker(failingMirror{err: boom}, nil)

	err := w.HandleChange(context.Background(), amqp.ExpenseDeleted("a"))
	assert.ErrorIs(t, err, boom)

	res, err := w.StartupSync(context.Background(), []core.Expense{expense("a")})
	require.NoError(t, err, "unlistable mirrors are skipped")
	assert.Zero(t, res.Appended)
}

func TestStartupSync(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	w := NewSyncWorker(mirror, log.Discard())

	for _, id := range []string{"a", "stale", "b", "b"} {
		require.NoError(t, mirror.AppendExpense(ctx, expense(id)))
	}

	res, err := w.StartupSync(ctx, []core.Expense{expense("a"), expense("b"), expense("c")})
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Appended: 1, Deleted: 1, Deduplicated: 1}, res)
	assert.Equal(t, []string{"a", "b", "c"}, ids(t, mirror))

	res, err = w.StartupSync(ctx, []core.Expense{expense("a"), expense("b"), expense("c")})
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{}, res)
}

func TestStartupSyncCollapsesReplayedAppends(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	w := NewSyncWorker(mirror, log.Discard())

	// The same created event delivered three times while the worker was down.
	for range 3 {
		require.NoError(t, w.HandleChange(ctx, amqp.ExpenseCreated(expense("a"))))
	}
	require.NoError(t, mirror.AppendExpense(ctx, expense("b")))

	res, err := w.StartupSync(ctx, []core.Expense{expense("a"), expense("b")})
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Deduplicated: 2}, res)
	assert.Equal(t, []string{"b", "a"}, ids(t, mirror))

	rows, err := mirror.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t-a", rows[1].Title)
}

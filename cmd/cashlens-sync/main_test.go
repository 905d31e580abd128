package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashlens/internal/core"
	"cashlens/internal/log"
	mirrormem "cashlens/internal/sheets/memory"
	"cashlens/internal/storage/memory"
	"cashlens/internal/store"
	"cashlens/internal/worker"
)

func TestReconcileReadsLatestStorage(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	mirror := mirrormem.New()
	w := worker.NewSyncWorker(mirror, log.Discard())

	// Another process writes through its own store instance.
	writer, err := store.Open(ctx, kv, store.WithLogger(log.Discard()))
	require.NoError(t, err)
	e, err := writer.AddExpense(ctx, core.ExpenseDraft{
		Title:    "Dinner",
		Amount:   core.Money{Cents: 12000},
		Category: core.Food.Category(),
		Date:     time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, mirror.AppendExpense(ctx, core.Expense{ID: "stale", Title: "Old", Amount: core.Money{Cents: 1}, Category: core.Food.Category(), Date: e.Date}))

	res, err := reconcile(ctx, kv, w, log.Discard())
	require.NoError(t, err)
	assert.Equal(t, worker.ReconcileResult{Appended: 1, Deleted: 1}, res)

	rows, err := mirror.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, e.ID, rows[0].ID)

	// A second pass is a no-op.
	res, err = reconcile(ctx, kv, w, log.Discard())
	require.NoError(t, err)
	assert.Zero(t, res)
}

func TestReconcileCorruptStorage(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, store.KeyExpenses, "{"))

	_, err := reconcile(ctx, kv, worker.NewSyncWorker(mirrormem.New(), nil), log.Discard())
	assert.ErrorContains(t, err, "decode expenses")
}

func TestReconcileEvery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- reconcileEvery(ctx, 5*time.Millisecond, func(context.Context) error {
			if calls.Add(1) == 1 {
				return errors.New("sheet unavailable")
			}
			return nil
		}, log.Discard())
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestReconcileEveryDisabled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	called := false
	err := reconcileEvery(ctx, 0, func(context.Context) error { called = true; return nil }, log.Discard())
	assert.NoError(t, err)
	assert.False(t, called)
}

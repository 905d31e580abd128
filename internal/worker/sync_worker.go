// Package worker applies store change events to the spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"

	"cashlens/internal/amqp"
	"cashlens/internal/core"
	"cashlens/internal/log"
	"cashlens/internal/sheets"
)

// SyncWorker keeps an ExpenseMirror in step with the store.
type SyncWorker struct {
	mirror sheets.ExpenseMirror
	logger *log.Logger
}

func NewSyncWorker(mirror sheets.ExpenseMirror, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange applies one event. Events that do not touch the expense
// list are acknowledged without work. A returned error makes the consumer
// requeue the message.
func (w *SyncWorker) HandleChange(ctx context.Context, ev amqp.ChangeEvent) error {
	switch ev.Kind {
	case amqp.KindExpenseCreated:
		if ev.Expense == nil {
			return errors.New("expense.created without payload")
		}
		if err := w.mirror.AppendExpense(ctx, *ev.Expense); err != nil {
			return fmt.Errorf("append to mirror: %w", err)
		}
	case amqp.KindExpenseDeleted:
		if err := w.mirror.DeleteExpense(ctx, ev.ExpenseID); err != nil {
			return fmt.Errorf("delete from mirror: %w", err)
		}
	case amqp.KindExpensesCleared:
		if err := w.mirror.Clear(ctx); err != nil {
			return fmt.Errorf("clear mirror: %w", err)
		}
	default:
		w.logger.DebugContext(ctx, "Ignoring change event", log.FieldEventKind, string(ev.Kind))
		return nil
	}

	w.logger.InfoContext(ctx, "Applied change event",
		log.FieldOperation, log.OpSync,
		log.FieldEventKind, string(ev.Kind),
		log.FieldExpenseID, ev.ExpenseID)
	return nil
}

// ReconcileResult reports what StartupSync changed. Deduplicated counts
// the extra rows dropped for expenses that were mirrored more than once.
type ReconcileResult struct {
	Appended     int
	Deleted      int
	Deduplicated int
}

// StartupSync compares the mirror with the authoritative expense list and
// fixes the difference. This recovers from events lost or replayed while
// the worker was down. It needs a mirror that can be listed.
func (w *SyncWorker) StartupSync(ctx context.Context, expenses []core.Expense) (ReconcileResult, error) {
	var res ReconcileResult

	lister, ok := w.mirror.(sheets.ExpenseLister)
	if !ok {
		w.logger.WarnContext(ctx, "Mirror cannot be listed, skipping startup sync")
		return res, nil
	}
	mirrored, err := lister.ListExpenses(ctx)
	if err != nil {
		return res, fmt.Errorf("list mirror: %w", err)
	}

	want := make(map[string]bool, len(expenses))
	for _, e := range expenses {
		want[e.ID] = true
	}
	rows := make(map[string]int, len(mirrored))
	for _, e := range mirrored {
		rows[e.ID]++
		if rows[e.ID] == 1 && !want[e.ID] {
			if err := w.mirror.DeleteExpense(ctx, e.ID); err != nil {
				return res, fmt.Errorf("delete stale row %s: %w", e.ID, err)
			}
			res.Deleted++
		}
	}
	for _, e := range expenses {
		n := rows[e.ID]
		if n == 1 {
			continue
		}
		// DeleteExpense drops every row with the ID, so duplicates are
		// cleared and the expense written back once.
		if n > 1 {
			if err := w.mirror.DeleteExpense(ctx, e.ID); err != nil {
				return res, fmt.Errorf("delete duplicate rows %s: %w", e.ID, err)
			}
		}
		if err := w.mirror.AppendExpense(ctx, e); err != nil {
			return res, fmt.Errorf("append missing row %s: %w", e.ID, err)
		}
		if n == 0 {
			res.Appended++
		} else {
			res.Deduplicated += n - 1
		}
		rows[e.ID] = 1
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		log.FieldOperation, log.OpSync,
		"total", len(expenses),
		"appended", res.Appended,
		"deleted", res.Deleted,
		"deduplicated", res.Deduplicated)
	return res, nil
}

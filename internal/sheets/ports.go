package sheets

import (
	"context"

	"cashlens/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseMirror keeps a spreadsheet copy of the expense list in step
	// with the store. Operations are idempotent: deleting a missing row or
	// clearing an empty sheet succeeds.
	ExpenseMirror interface {
		AppendExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
		Clear(ctx context.Context) error
	}

	// ExpenseLister reads the mirrored rows back.
	ExpenseLister interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
	}
)

package memory

import (
	"context"
	"fmt"
	"sync"

	"cashlens/internal/core"
	ports "cashlens/internal/sheets"
)

// Store is an in-process mirror. It keeps rows in their cell form so that
// what is read back went through the same encoding as a real sheet.
type Store struct {
	mu   sync.Mutex
	rows [][]string
}

var (
	_ ports.ExpenseMirror = (*Store)(nil)
	_ ports.ExpenseLister = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// AppendExpense adds a row for e.
func (s *Store) AppendExpense(_ context.Context, e core.Expense) error {
	cells := ports.ExpenseRow(e)
	row := make([]string, len(cells))
	for i, v := range cells {
		row[i] = fmt.Sprint(v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return nil
}

// DeleteExpense removes every row whose id matches.
func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	for _, r := range s.rows {
		if r[0] != id {
			kept = append(kept, r)
		}
	}
	s.rows = kept
	return nil
}

// Clear drops all rows.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
	return nil
}

// ListExpenses parses the rows back into expenses.
func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.rows))
	for _, r := range s.rows {
		e, err := ports.ParseRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Len returns the number of rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

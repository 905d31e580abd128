package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"cashlens/internal/core"
)

// ChangeKind names what happened in the store.
type ChangeKind string

const (
	KindExpenseCreated  ChangeKind = "expense.created"
	KindExpenseDeleted  ChangeKind = "expense.deleted"
	KindExpensesCleared ChangeKind = "expenses.cleared"
	KindCategoryCreated ChangeKind = "category.created"
	KindCategoryDeleted ChangeKind = "category.deleted"
	KindBudgetUpdated   ChangeKind = "budget.updated"
	KindProfileUpdated  ChangeKind = "profile.updated"
)

var knownKinds = map[ChangeKind]bool{
	KindExpenseCreated:  true,
	KindExpenseDeleted:  true,
	KindExpensesCleared: true,
	KindCategoryCreated: true,
	KindCategoryDeleted: true,
	KindBudgetUpdated:   true,
	KindProfileUpdated:  true,
}

// Valid reports whether k is one of the published kinds.
func (k ChangeKind) Valid() bool {
	return knownKinds[k]
}

// ChangeEvent is published after a mutation has been persisted locally.
// Expense is only set for expense.created so the consumer does not need
// access to the store.
type ChangeEvent struct {
	Kind       ChangeKind    `json:"kind"`
	ExpenseID  string        `json:"expenseId,omitempty"`
	Expense    *core.Expense `json:"expense,omitempty"`
	CategoryID string        `json:"categoryId,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// NewChangeEvent creates an event of the given kind stamped with the
// current time.
func NewChangeEvent(kind ChangeKind) ChangeEvent {
	return ChangeEvent{Kind: kind, Timestamp: time.Now().UTC()}
}

// ExpenseCreated builds the event for a new expense.
func ExpenseCreated(e core.Expense) ChangeEvent {
	ev := NewChangeEvent(KindExpenseCreated)
	ev.ExpenseID = e.ID
	ev.Expense = &e
	return ev
}

// ExpenseDeleted builds the event for a removed expense.
func ExpenseDeleted(id string) ChangeEvent {
	ev := NewChangeEvent(KindExpenseDeleted)
	ev.ExpenseID = id
	return ev
}

// ToJSON converts the event to JSON bytes
func (ev ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(ev)
}

// ChangeEventFromJSON decodes an event and rejects unknown kinds.
func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ChangeEvent{}, err
	}
	if !ev.Kind.Valid() {
		return ChangeEvent{}, fmt.Errorf("unknown change kind %q", ev.Kind)
	}
	if ev.Kind == KindExpenseCreated && ev.Expense == nil {
		return ChangeEvent{}, fmt.Errorf("%s event without expense", ev.Kind)
	}
	return ev, nil
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashlens/internal/amqp"
	"cashlens/internal/core"
	"cashlens/internal/log"
	"cashlens/internal/storage/memory"
	"cashlens/internal/store"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []amqp.ChangeEvent
	err    error
	closed bool
}

func (f *fakePublisher) PublishChange(_ context.Context, ev amqp.ChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func (f *fakePublisher) kinds() []amqp.ChangeKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]amqp.ChangeKind, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Kind
	}
	return out
}

func newService(t *testing.T, pub ChangePublisher) (*ExpenseService, *store.Store, *memory.Store) {
	t.Helper()
	kv := memory.New()
	st, err := store.Open(context.Background(), kv, store.WithLogger(log.Discard()))
	require.NoError(t, err)
	return NewExpenseService(st, pub, log.Discard()), st, kv
}

func validDraft() core.ExpenseDraft {
	return core.ExpenseDraft{
		Title:    "Dinner",
		Amount:   core.Money{Cents: 12000},
		Category: core.Food.Category(),
		Date:     time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateExpense(t *testing.T) {
	pub := &fakePublisher{}
	svc, st, _ := newService(t, pub)
	ctx := context.Background()

	e, err := svc.CreateExpense(ctx, validDraft())
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Len(t, st.Expenses(), 1)

	require.Len(t, pub.events, 1)
	assert.Equal(t, amqp.KindExpenseCreated, pub.events[0].Kind)
	assert.Equal(t, e.ID, pub.events[0].ExpenseID)
	require.NotNil(t, pub.events[0].Expense)
	assert.Equal(t, "Dinner", pub.events[0].Expense.Title)
}

func TestCreateExpenseRejectsInvalidDraft(t *testing.T) {
	pub := &fakePublisher{}
	svc, st, kv := newService(t, pub)

	d := validDraft()
	d.Title = "  "
	_, err := svc.CreateExpense(context.Background(), d)
	assert.ErrorIs(t, err, core.ErrEmptyTitle)

	d = validDraft()
	d.Amount = core.Money{}
	_, err = svc.CreateExpense(context.Background(), d)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	assert.Empty(t, st.Expenses())
	assert.Zero(t, kv.Writes())
	assert.Empty(t, pub.events)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, st, _ := newService(t, pub)

	_, err := svc.CreateExpense(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Len(t, st.Expenses(), 1)
}

func TestNilPublisher(t *testing.T) {
	svc, st, _ := newService(t, nil)
	ctx := context.Background()

	e, err := svc.CreateExpense(ctx, validDraft())
	require.NoError(t, err)
	ok, err := svc.DeleteExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, st.Expenses())
	assert.NoError(t, svc.Close())
}

func TestStoreFailureIsReturned(t *testing.T) {
	pub := &fakePublisher{}
	svc, _, kv := newService(t, pub)
	diskFull := errors.New("disk full")
	kv.FailWrites(diskFull)

	_, err := svc.CreateExpense(context.Background(), validDraft())
	assert.ErrorIs(t, err, diskFull)
	assert.Empty(t, pub.events)
}

func TestEventSequence(t *testing.T) {
	pub := &fakePublisher{}
	svc, _, _ := newService(t, pub)
	ctx := context.Background()

	e, err := svc.CreateExpense(ctx, validDraft())
	require.NoError(t, err)

	ok, err := svc.DeleteExpense(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, ok)
	// Second delete is a no-op and stays silent.
	ok, err = svc.DeleteExpense(ctx, e.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, svc.ClearExpenses(ctx))

	ci, err := svc.CreateCategory(ctx, core.CategoryDraft{Name: "Pets", Color: "#A1B2C3"})
	require.NoError(t, err)
	require.NoError(t, svc.SetBudget(ctx, ci.ID, core.Money{Cents: 5000}))
	ok, err = svc.DeleteCategory(ctx, ci.ID)
	require.NoError(t, err)
	require.True(t, ok)

	dark := core.ThemeDark
	p, err := svc.UpdateProfile(ctx, core.ProfileUpdate{Theme: &dark})
	require.NoError(t, err)
	assert.Equal(t, core.ThemeDark, p.Theme)

	assert.Equal(t, []amqp.ChangeKind{
		amqp.KindExpenseCreated,
		amqp.KindExpenseDeleted,
		amqp.KindExpensesCleared,
		amqp.KindCategoryCreated,
		amqp.KindBudgetUpdated,
		amqp.KindCategoryDeleted,
		amqp.KindProfileUpdated,
	}, pub.kinds())
}

func TestCategoryAndProfileValidation(t *testing.T) {
	pub := &fakePublisher{}
	svc, st, _ := newService(t, pub)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, core.CategoryDraft{Name: "pets", Color: "red"})
	assert.ErrorIs(t, err, core.ErrInvalidColor)
	_, err = svc.CreateCategory(ctx, core.CategoryDraft{Name: "FOOD"})
	assert.ErrorIs(t, err, store.ErrDuplicateCategory)
	_, err = svc.DeleteCategory(ctx, "groceries")
	assert.ErrorIs(t, err, store.ErrDefaultCategory)
	assert.ErrorIs(t, svc.SetBudget(ctx, "food", core.Money{Cents: -1}), core.ErrInvalidAmount)

	bad := core.Theme("sepia")
	p, err := svc.UpdateProfile(ctx, core.ProfileUpdate{Theme: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidTheme)
	assert.Equal(t, core.DefaultUserProfile(), p)

	assert.Len(t, st.Categories(), 4)
	assert.Empty(t, pub.events)
}

func TestExpenseService_Close(t *testing.T) {
	pub := &fakePublisher{}
	svc, _, _ := newService(t, pub)
	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}

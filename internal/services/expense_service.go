// Package services validates user input before it reaches the store and
// announces persisted changes on the change feed.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cashlens/internal/amqp"
	"cashlens/internal/core"
	"cashlens/internal/log"
	"cashlens/internal/store"
)

// ChangePublisher is implemented by *amqp.Client.
type ChangePublisher interface {
	PublishChange(ctx context.Context, ev amqp.ChangeEvent) error
}

// ExpenseService orchestrates store mutations and change publication.
// The store write always happens first; publication is best effort.
type ExpenseService struct {
	store     *store.Store
	publisher ChangePublisher
	logger    *log.Logger
}

// NewExpenseService wires the service. publisher may be nil, in which case
// no events are sent.
func NewExpenseService(st *store.Store, publisher ChangePublisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExpenseService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentService),
	}
}

// CreateExpense validates the draft, saves it and publishes expense.created.
func (s *ExpenseService) CreateExpense(ctx context.Context, d core.ExpenseDraft) (core.Expense, error) {
	if err := d.Validate(); err != nil {
		s.logger.DebugContext(ctx, "Rejected expense",
			log.FieldOperation, log.OpValidate,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeValidation)
		return core.Expense{}, err
	}

	e, err := s.store.AddExpense(ctx, d)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, amqp.ExpenseCreated(e))
	return e, nil
}

// DeleteExpense removes an expense. Deleting an unknown ID is not an error
// and publishes nothing.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.DeleteExpense(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	if ok {
		s.publish(ctx, amqp.ExpenseDeleted(id))
	}
	return ok, nil
}

// ClearExpenses removes every expense.
func (s *ExpenseService) ClearExpenses(ctx context.Context) error {
	if err := s.store.ClearAllData(ctx); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	s.publish(ctx, amqp.NewChangeEvent(amqp.KindExpensesCleared))
	return nil
}

// CreateCategory validates and adds a custom category.
func (s *ExpenseService) CreateCategory(ctx context.Context, d core.CategoryDraft) (core.CategoryInfo, error) {
	if err := d.Validate(); err != nil {
		return core.CategoryInfo{}, err
	}
	ci, err := s.store.AddCategory(ctx, d)
	if err != nil {
		return core.CategoryInfo{}, err
	}

	ev := amqp.NewChangeEvent(amqp.KindCategoryCreated)
	ev.CategoryID = ci.ID
	s.publish(ctx, ev)
	return ci, nil
}

// DeleteCategory removes a custom category.
func (s *ExpenseService) DeleteCategory(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.DeleteCategory(ctx, id)
	if err != nil || !ok {
		return ok, err
	}

	ev := amqp.NewChangeEvent(amqp.KindCategoryDeleted)
	ev.CategoryID = id
	s.publish(ctx, ev)
	return true, nil
}

// SetBudget sets the ceiling for a category. Negative limits are rejected;
// zero removes the effect of a limit.
func (s *ExpenseService) SetBudget(ctx context.Context, categoryID string, limit core.Money) error {
	if limit.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := s.store.SetBudgetLimit(ctx, categoryID, limit); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}

	ev := amqp.NewChangeEvent(amqp.KindBudgetUpdated)
	ev.CategoryID = categoryID
	s.publish(ctx, ev)
	return nil
}

// UpdateProfile validates and merges a partial profile update.
func (s *ExpenseService) UpdateProfile(ctx context.Context, u core.ProfileUpdate) (core.UserProfile, error) {
	if err := u.Validate(); err != nil {
		return s.store.UserProfile(), err
	}
	if u.IsZero() {
		return s.store.UserProfile(), nil
	}
	p, err := s.store.UpdateUserProfile(ctx, u)
	if err != nil {
		return p, fmt.Errorf("update profile: %w", err)
	}
	s.publish(ctx, amqp.NewChangeEvent(amqp.KindProfileUpdated))
	return p, nil
}

func (s *ExpenseService) publish(ctx context.Context, ev amqp.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, ev); err != nil {
		// The local write already succeeded.
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			log.FieldOperation, log.OpPublish,
			log.FieldEventKind, string(ev.Kind),
			log.FieldExpenseID, ev.ExpenseID,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeNetwork)
	}
}

// Close closes the publisher when it holds a connection.
func (s *ExpenseService) Close() error {
	var errs []error

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}

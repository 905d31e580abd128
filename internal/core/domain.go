package core

import (
	"errors"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	// Expense is a single recorded spending event. Expenses are never edited
	// in place; they are created from an ExpenseDraft and deleted by ID.
	Expense struct {
		ID       string    `json:"id"`
		Title    string    `json:"title"`
		Amount   Money     `json:"amount"`
		Category Category  `json:"category"`
		Date     time.Time `json:"date"`
		Notes    string    `json:"notes,omitempty"`
	}

	// ExpenseDraft is an expense as submitted, before an ID is assigned.
	ExpenseDraft struct {
		Title    string   `validate:"notblank,max=200"`
		Amount   Money    `validate:"gt=0"`
		Category Category `validate:"required"`
		Date     time.Time
		Notes    string `validate:"max=1000"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyTitle        = errors.New("empty title")
	ErrTitleTooLong      = errors.New("title too long (max 200 characters)")
	ErrNotesTooLong      = errors.New("notes too long (max 1000 characters)")
	ErrEmptyCategory     = errors.New("empty category")
	ErrZeroDate          = errors.New("date cannot be zero")
	ErrEmptyCategoryName = errors.New("empty category name")
	ErrCategoryNameLong  = errors.New("category name too long (max 40 characters)")
	ErrInvalidColor      = errors.New("invalid color (expected hex like #A1B2C3)")
	ErrInvalidTheme      = errors.New("invalid theme")
	ErrInvalidCurrency   = errors.New("invalid currency")
	ErrEmptyProfileName  = errors.New("empty profile name")
)

// Validate checks a draft the way the add-expense form does before it reaches
// the store: a title is required, the amount must be positive and a category
// must be chosen.
func (d ExpenseDraft) Validate() error {
	if d.Date.IsZero() {
		return ErrZeroDate
	}
	return validateStruct(d)
}

// Expense materializes the draft with the given identifier.
func (d ExpenseDraft) Expense(id string) Expense {
	return Expense{
		ID:       id,
		Title:    d.Title,
		Amount:   d.Amount,
		Category: d.Category,
		Date:     d.Date,
		Notes:    d.Notes,
	}
}

// Draft returns the expense without its identifier.
func (e Expense) Draft() ExpenseDraft {
	return ExpenseDraft{
		Title:    e.Title,
		Amount:   e.Amount,
		Category: e.Category,
		Date:     e.Date,
		Notes:    e.Notes,
	}
}

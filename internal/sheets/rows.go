package sheets

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cashlens/internal/core"
)

// Header is the first row of the mirror sheet.
var Header = []string{"id", "title", "amount", "category", "date", "notes"}

var ErrShortRow = errors.New("row has too few columns")

// ExpenseRow converts an expense into sheet cells, in Header order.
func ExpenseRow(e core.Expense) []any {
	return []any{
		e.ID,
		e.Title,
		e.Amount.String(),
		e.Category.Name(),
		e.Date.Format(time.RFC3339),
		e.Notes,
	}
}

// ParseRow converts sheet cells back into an expense. Amounts may use a
// decimal comma; dates may be RFC 3339 or plain YYYY-MM-DD.
func ParseRow(cols []string) (core.Expense, error) {
	if len(cols) < 5 {
		return core.Expense{}, ErrShortRow
	}
	id := strings.TrimSpace(cols[0])
	if id == "" {
		return core.Expense{}, errors.New("missing id")
	}

	amount, err := core.ParseAmount(strings.ReplaceAll(strings.TrimSpace(cols[2]), ",", "."))
	if err != nil {
		return core.Expense{}, fmt.Errorf("amount %q: %w", cols[2], err)
	}

	raw := strings.TrimSpace(cols[4])
	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return core.Expense{}, fmt.Errorf("date %q: %w", cols[4], err)
		}
	}

	e := core.Expense{
		ID:       id,
		Title:    strings.TrimSpace(cols[1]),
		Amount:   amount,
		Category: core.ParseCategory(cols[3]),
		Date:     date,
	}
	if len(cols) > 5 {
		e.Notes = strings.TrimSpace(cols[5])
	}
	return e, nil
}

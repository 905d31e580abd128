// Package filter derives the visible expense list and its aggregates from the
// full collection and the current filter/sort state. Everything here is a
// pure function of its inputs.
package filter

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"cashlens/internal/core"
)

// TimeFrame is a date range anchored to the current moment.
type TimeFrame string

const (
	Today     TimeFrame = "today"
	ThisWeek  TimeFrame = "this-week"
	ThisMonth TimeFrame = "this-month"
	ThisYear  TimeFrame = "this-year"
)

// TimeFrames lists the frames in selector order.
var TimeFrames = []TimeFrame{Today, ThisWeek, ThisMonth, ThisYear}

// SortOrder selects how the filtered list is ordered.
type SortOrder string

const (
	DateDesc   SortOrder = "date-desc"
	DateAsc    SortOrder = "date-asc"
	AmountDesc SortOrder = "amount-desc"
	AmountAsc  SortOrder = "amount-asc"
	TitleAsc   SortOrder = "title-asc"
)

// SortOrders lists the orders in menu order.
var SortOrders = []SortOrder{DateDesc, DateAsc, AmountDesc, AmountAsc, TitleAsc}

// ParseTimeFrame accepts the canonical frame names.
func ParseTimeFrame(s string) (TimeFrame, error) {
	tf := TimeFrame(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(TimeFrames, tf) {
		return tf, nil
	}
	return "", fmt.Errorf("unknown time frame %q", s)
}

// ParseSortOrder accepts the canonical order names; "title" is an alias of
// title-asc.
func ParseSortOrder(s string) (SortOrder, error) {
	so := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	if so == "title" {
		return TitleAsc, nil
	}
	if slices.Contains(SortOrders, so) {
		return so, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Start returns the first instant included by the frame, evaluated in now's
// location. Weeks start on Sunday.
func (tf TimeFrame) Start(now time.Time) time.Time {
	y, m, d := now.Date()
	loc := now.Location()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	switch tf {
	case ThisWeek:
		return midnight.AddDate(0, 0, -int(midnight.Weekday()))
	case ThisMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case ThisYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return midnight
	}
}

// State is the transient filter/sort selection.
type State struct {
	TimeFrame TimeFrame
	Category  *core.Category
	Query     string
	Sort      SortOrder
}

// DefaultState matches a fresh session: today, no category, newest first.
func DefaultState() State {
	return State{TimeFrame: Today, Sort: DateDesc}
}

// Key is a stable string form of the state, used for caching derived views.
// Free-text fields are quoted so a "|" inside them cannot collide.
func (s State) Key() string {
	cat := "*"
	if s.Category != nil {
		cat = strconv.Quote(s.Category.Name())
	}
	return fmt.Sprintf("%s|%s|%q|%s", s.TimeFrame, cat, strings.ToLower(s.Query), s.Sort)
}

// CategoryTotal is the spend of one category within the time/search scope.
type CategoryTotal struct {
	Category   core.Category
	Total      core.Money
	Percentage float64
}

// Result is the derived view.
type Result struct {
	// Expenses is the fully filtered and sorted list.
	Expenses []core.Expense
	// Total is the sum of Expenses.
	Total core.Money
	// ScopeTotal is the sum over the time and search filters only, ignoring
	// the category filter.
	ScopeTotal core.Money
	// ByCategory has one entry per requested category, zero totals included.
	ByCategory []CategoryTotal
}

// CategoryTotal returns the total for c, zero if c was not requested.
func (r Result) CategoryTotal(c core.Category) core.Money {
	for _, ct := range r.ByCategory {
		if ct.Category == c {
			return ct.Total
		}
	}
	return core.Money{}
}

// Ranked returns categories with non-zero spend, largest first.
func (r Result) Ranked() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(r.ByCategory))
	for _, ct := range r.ByCategory {
		if ct.Total.Cents > 0 {
			out = append(out, ct)
		}
	}
	slices.SortStableFunc(out, func(a, b CategoryTotal) int {
		return cmp.Compare(b.Total.Cents, a.Total.Cents)
	})
	return out
}

// Apply runs the pipeline: time frame, category, search, then a stable sort.
// Category totals are computed for every entry of categories over the
// time/search-filtered set.
func Apply(expenses []core.Expense, state State, now time.Time, categories []core.Category) Result {
	start := state.TimeFrame.Start(now)
	query := strings.ToLower(state.Query)

	scope := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Date.Before(start) {
			continue
		}
		if query != "" && !matches(e, query) {
			continue
		}
		scope = append(scope, e)
	}

	visible := make([]core.Expense, 0, len(scope))
	for _, e := range scope {
		if state.Category != nil && e.Category != *state.Category {
			continue
		}
		visible = append(visible, e)
	}
	Sort(visible, state.Sort)

	res := Result{
		Expenses:   visible,
		Total:      Sum(visible),
		ScopeTotal: Sum(scope),
		ByCategory: make([]CategoryTotal, 0, len(categories)),
	}
	for _, c := range categories {
		total := sumCategory(scope, c)
		res.ByCategory = append(res.ByCategory, CategoryTotal{
			Category:   c,
			Total:      total,
			Percentage: Percentage(total, res.ScopeTotal),
		})
	}
	return res
}

func matches(e core.Expense, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(e.Title), lowerQuery) ||
		strings.Contains(e.Category.Name(), lowerQuery)
}

// Sort orders expenses in place. Ties keep their insertion order.
func Sort(expenses []core.Expense, order SortOrder) {
	var less func(a, b core.Expense) int
	switch order {
	case DateAsc:
		less = func(a, b core.Expense) int { return a.Date.Compare(b.Date) }
	case AmountDesc:
		less = func(a, b core.Expense) int { return cmp.Compare(b.Amount.Cents, a.Amount.Cents) }
	case AmountAsc:
		less = func(a, b core.Expense) int { return cmp.Compare(a.Amount.Cents, b.Amount.Cents) }
	case TitleAsc:
		less = func(a, b core.Expense) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	default:
		less = func(a, b core.Expense) int { return b.Date.Compare(a.Date) }
	}
	slices.SortStableFunc(expenses, less)
}

// Sum adds up the amounts.
func Sum(expenses []core.Expense) core.Money {
	var total core.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

func sumCategory(expenses []core.Expense, c core.Category) core.Money {
	var total core.Money
	for _, e := range expenses {
		if e.Category == c {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// Percentage returns part/whole*100, or 0 when whole is zero.
func Percentage(part, whole core.Money) float64 {
	if whole.Cents == 0 {
		return 0
	}
	return float64(part.Cents) / float64(whole.Cents) * 100
}

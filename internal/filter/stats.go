package filter

import (
	"math"
	"slices"
	"time"

	"cashlens/internal/core"
)

// DailyAmount is the spend of one calendar day.
type DailyAmount struct {
	Day    time.Time
	Amount core.Money
}

// DailySeries sums expenses per calendar day (in each expense's own
// location) and returns the days in ascending order.
func DailySeries(expenses []core.Expense) []DailyAmount {
	index := make(map[time.Time]int)
	var out []DailyAmount
	for _, e := range expenses {
		y, m, d := e.Date.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, e.Date.Location())
		if i, ok := index[day]; ok {
			out[i].Amount = out[i].Amount.Add(e.Amount)
			continue
		}
		index[day] = len(out)
		out = append(out, DailyAmount{Day: day, Amount: e.Amount})
	}
	slices.SortFunc(out, func(a, b DailyAmount) int { return a.Day.Compare(b.Day) })
	return out
}

// BudgetStatus compares a category's spend with its limit.
type BudgetStatus struct {
	CategoryID string
	Category   core.Category
	Spent      core.Money
	Limit      core.Money
	// Percentage is spent/limit rounded and capped at 100; 0 without a limit.
	Percentage int
	Over       bool
	OverBy     core.Money
}

// HasLimit reports whether a ceiling is set.
func (b BudgetStatus) HasLimit() bool {
	return b.Limit.Cents > 0
}

// Remaining is what is left before the limit is reached, never negative.
func (b BudgetStatus) Remaining() core.Money {
	if !b.HasLimit() || b.Over {
		return core.Money{}
	}
	return b.Limit.Sub(b.Spent)
}

// Budgets computes one status per category, in category order. Spend is
// taken from the category totals of a Result.
func Budgets(categories []core.CategoryInfo, limits core.BudgetLimits, totals []CategoryTotal) []BudgetStatus {
	spent := make(map[core.Category]core.Money, len(totals))
	for _, ct := range totals {
		spent[ct.Category] = ct.Total
	}

	out := make([]BudgetStatus, 0, len(categories))
	for _, ci := range categories {
		c := ci.Category()
		st := BudgetStatus{
			CategoryID: ci.ID,
			Category:   c,
			Spent:      spent[c],
			Limit:      limits.Limit(ci.ID),
		}
		if st.HasLimit() {
			pct := math.Round(float64(st.Spent.Cents) / float64(st.Limit.Cents) * 100)
			st.Percentage = int(math.Min(pct, 100))
			if st.Spent.Cents > st.Limit.Cents {
				st.Over = true
				st.OverBy = st.Spent.Sub(st.Limit)
			}
		}
		out = append(out, st)
	}
	return out
}

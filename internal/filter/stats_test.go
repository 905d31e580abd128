package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashlens/internal/core"
)

func TestDailySeries(t *testing.T) {
	d1 := time.Date(2025, 5, 7, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 5, 3, 18, 0, 0, 0, time.UTC)
	series := DailySeries([]core.Expense{
		exp("1", "a", 2000, food, d1),
		exp("2", "b", 500, food, d2),
		exp("3", "c", 12000, food, d1.Add(5*time.Hour)),
	})

	require.Len(t, series, 2)
	assert.Equal(t, 3, series[0].Day.Day())
	assert.Equal(t, int64(500), series[0].Amount.Cents)
	assert.Equal(t, 7, series[1].Day.Day())
	assert.Equal(t, int64(14000), series[1].Amount.Cents)

	assert.Empty(t, DailySeries(nil))
}

func TestBudgets(t *testing.T) {
	categories := core.DefaultCategories()
	limits := core.BudgetLimits{
		"food":      {Cents: 10000},
		"groceries": {Cents: 5000},
		"ghost":     {Cents: 100},
	}
	totals := []CategoryTotal{
		{Category: food, Total: core.Money{Cents: 14000}},
		{Category: groceries, Total: core.Money{Cents: 1234}},
		{Category: transport, Total: core.Money{Cents: 700}},
	}

	statuses := Budgets(categories, limits, totals)
	require.Len(t, statuses, len(categories))

	byID := map[string]BudgetStatus{}
	for _, st := range statuses {
		byID[st.CategoryID] = st
	}

	f := byID["food"]
	assert.True(t, f.Over)
	assert.Equal(t, "40.00", f.OverBy.String())
	assert.Equal(t, 100, f.Percentage)
	assert.True(t, f.Remaining().IsZero())

	g := byID["groceries"]
	assert.False(t, g.Over)
	assert.Equal(t, 25, g.Percentage)
	assert.Equal(t, "37.66", g.Remaining().String())

	tr := byID["transportation"]
	assert.False(t, tr.HasLimit())
	assert.Zero(t, tr.Percentage)
	assert.False(t, tr.Over)
	assert.Equal(t, int64(700), tr.Spent.Cents)

	_, stale := byID["ghost"]
	assert.False(t, stale)
}

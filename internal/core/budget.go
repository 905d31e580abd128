package core

// BudgetLimits maps a category ID to its spending ceiling. Entries may
// outlive the category they reference.
type BudgetLimits map[string]Money

// Clone returns an independent copy.
func (b BudgetLimits) Clone() BudgetLimits {
	out := make(BudgetLimits, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Limit returns the ceiling for categoryID, or zero when none is set.
func (b BudgetLimits) Limit(categoryID string) Money {
	return b[categoryID]
}

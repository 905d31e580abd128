// Package store holds the expense tracker state: expenses, categories, the
// user profile, budget limits and the transient filter selection. Every
// mutation is written through to the backing KV before it becomes visible.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cashlens/internal/cache"
	"cashlens/internal/core"
	"cashlens/internal/filter"
	"cashlens/internal/log"
	"cashlens/internal/storage"
)

// Keys under which the collections are persisted.
const (
	KeyExpenses     = "expenses"
	KeyCategories   = "categories"
	KeyUserProfile  = "userProfile"
	KeyBudgetLimits = "budgetLimits"
)

var (
	ErrDuplicateCategory = errors.New("category already exists")
	ErrDefaultCategory   = errors.New("default categories cannot be deleted")
)

// Store is the single source of truth for the tracker. It is safe for
// concurrent use.
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	logger *log.Logger
	newID  func() string
	views  cache.Cache[filter.Result]

	expenses   []core.Expense
	categories []core.CategoryInfo
	profile    core.UserProfile
	budgets    core.BudgetLimits
	state      filter.State
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger; the component is forced to "store".
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStore)
		}
	}
}

// WithIDGenerator replaces the UUID generator used for new records.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithViewCache memoizes derived views. The cache is purged on every
// mutation.
func WithViewCache(c cache.Cache[filter.Result]) Option {
	return func(s *Store) {
		s.views = c
	}
}

// Open loads the four collections from kv and returns a ready store.
// Missing keys fall back to defaults; a blob that cannot be decoded is an
// error.
func Open(ctx context.Context, kv storage.KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:     kv,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentStore),
		newID:  uuid.NewString,
		state:  filter.DefaultState(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		s.logger.Error("Failed to load data",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeStorage)
		return nil, err
	}

	s.logger.Debug("Store loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldCount, len(s.expenses))
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	keys := []string{KeyExpenses, KeyCategories, KeyUserProfile, KeyBudgetLimits}
	raw := make([]string, len(keys))
	found := make([]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			v, ok, err := s.kv.Get(gctx, key)
			if err != nil {
				return fmt.Errorf("read %s: %w", key, err)
			}
			raw[i], found[i] = v, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.expenses = []core.Expense{}
	if found[0] {
		if err := json.Unmarshal([]byte(raw[0]), &s.expenses); err != nil {
			return fmt.Errorf("decode %s: %w", KeyExpenses, err)
		}
	}

	var stored []core.CategoryInfo
	if found[1] {
		if err := json.Unmarshal([]byte(raw[1]), &stored); err != nil {
			return fmt.Errorf("decode %s: %w", KeyCategories, err)
		}
	}
	s.categories = withBuiltins(stored)

	s.profile = core.DefaultUserProfile()
	if found[2] {
		if err := json.Unmarshal([]byte(raw[2]), &s.profile); err != nil {
			return fmt.Errorf("decode %s: %w", KeyUserProfile, err)
		}
	}

	s.budgets = core.BudgetLimits{}
	if found[3] {
		if err := json.Unmarshal([]byte(raw[3]), &s.budgets); err != nil {
			return fmt.Errorf("decode %s: %w", KeyBudgetLimits, err)
		}
		if s.budgets == nil {
			s.budgets = core.BudgetLimits{}
		}
	}
	return nil
}

// withBuiltins normalizes stored names and puts any missing built-in back
// at the front, in display order. A built-in counts as present when its ID
// or its name is already taken, so names stay unique.
func withBuiltins(stored []core.CategoryInfo) []core.CategoryInfo {
	ids := make(map[string]bool, len(stored))
	names := make(map[string]bool, len(stored))
	for i := range stored {
		stored[i].Name = core.NormalizeCategoryName(stored[i].Name)
		ids[stored[i].ID] = true
		names[stored[i].Name] = true
	}
	out := make([]core.CategoryInfo, 0, len(stored)+len(core.Builtins))
	for _, def := range core.DefaultCategories() {
		if !ids[def.ID] && !names[def.Name] {
			out = append(out, def)
		}
	}
	return append(out, stored...)
}

// persist writes v under key. The caller commits its in-memory change only
// when persist succeeds.
func (s *Store) persist(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist collection",
			log.FieldOperation, log.OpPersist,
			log.FieldKey, key,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeStorage)
		return fmt.Errorf("persist %s: %w", key, err)
	}
	if s.views != nil {
		if n := s.views.Purge(); n > 0 {
			s.logger.DebugContext(ctx, "View cache purged",
				log.FieldKey, key,
				log.FieldCount, n)
		}
	}
	return nil
}

// AddExpense assigns a new ID to the draft and appends it. The draft is
// stored as given.
func (s *Store) AddExpense(ctx context.Context, draft core.ExpenseDraft) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := draft.Expense(s.newID())
	next := append(slices.Clip(s.expenses), e)
	if err := s.persist(ctx, KeyExpenses, next); err != nil {
		return core.Expense{}, err
	}
	s.expenses = next

	s.logger.InfoContext(ctx, "Expense added",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithExpense(e.ID, e.Title, e.Amount.Cents, e.Category.Name()).
			ToSlice()...)
	return e, nil
}

// DeleteExpense removes the expense with id. It reports false, and writes
// nothing, when no such expense exists.
func (s *Store) DeleteExpense(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.expenses, func(e core.Expense) bool { return e.ID == id })
	if idx < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(s.expenses), idx, idx+1)
	if err := s.persist(ctx, KeyExpenses, next); err != nil {
		return false, err
	}
	s.expenses = next

	s.logger.InfoContext(ctx, "Expense deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldExpenseID, id)
	return true, nil
}

// ClearAllData removes every expense. Categories, profile and budgets are
// kept.
func (s *Store) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, KeyExpenses, []core.Expense{}); err != nil {
		return err
	}
	count := len(s.expenses)
	s.expenses = []core.Expense{}

	s.logger.InfoContext(ctx, "Expenses cleared",
		log.FieldOperation, log.OpClear,
		log.FieldCount, count)
	return nil
}

// AddCategory creates a custom category. The name is lowercased; a name
// already in use (ignoring case) is rejected with ErrDuplicateCategory.
func (s *Store) AddCategory(ctx context.Context, draft core.CategoryDraft) (core.CategoryInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := core.NormalizeCategoryName(draft.Name)
	if _, ok := s.lookupLocked(name); ok {
		return core.CategoryInfo{}, fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
	}

	info := core.CategoryInfo{
		ID:     s.newID(),
		Name:   name,
		Color:  draft.Color,
		Icon:   draft.Icon,
		Custom: true,
	}
	if info.Color == "" {
		info.Color = core.DefaultCustomColor
	}
	if info.Icon == "" {
		info.Icon = core.DefaultCustomIcon
	}

	next := append(slices.Clip(s.categories), info)
	if err := s.persist(ctx, KeyCategories, next); err != nil {
		return core.CategoryInfo{}, err
	}
	s.categories = next

	s.logger.InfoContext(ctx, "Category added",
		log.FieldOperation, log.OpCreate,
		log.FieldCategoryID, info.ID,
		log.FieldCategory, info.Name)
	return info, nil
}

// DeleteCategory removes a custom category. Built-ins are rejected with
// ErrDefaultCategory. Expenses and budget limits that reference the
// category are left untouched.
func (s *Store) DeleteCategory(ctx context.Context, id string) (bool, error) {
	if core.IsDefaultCategoryID(id) {
		return false, fmt.Errorf("%w: %s", ErrDefaultCategory, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.categories, func(c core.CategoryInfo) bool { return c.ID == id })
	if idx < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(s.categories), idx, idx+1)
	if err := s.persist(ctx, KeyCategories, next); err != nil {
		return false, err
	}
	s.categories = next

	s.logger.InfoContext(ctx, "Category deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldCategoryID, id)
	return true, nil
}

// SetBudgetLimit sets or replaces the ceiling for a category ID. The ID is
// not checked against the category list.
func (s *Store) SetBudgetLimit(ctx context.Context, categoryID string, limit core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.budgets.Clone()
	next[categoryID] = limit
	if err := s.persist(ctx, KeyBudgetLimits, next); err != nil {
		return err
	}
	s.budgets = next

	s.logger.InfoContext(ctx, "Budget limit set",
		log.FieldOperation, log.OpUpdate,
		log.FieldCategoryID, categoryID,
		log.FieldAmountCents, limit.Cents)
	return nil
}

// UpdateUserProfile merges the non-nil fields of u into the profile.
func (s *Store) UpdateUserProfile(ctx context.Context, u core.ProfileUpdate) (core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.profile.Apply(u)
	if err := s.persist(ctx, KeyUserProfile, next); err != nil {
		return s.profile, err
	}
	s.profile = next

	s.logger.InfoContext(ctx, "Profile updated", log.FieldOperation, log.OpUpdate)
	return next, nil
}

// Expenses returns a copy of all expenses in insertion order.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.expenses)
}

// Expense finds an expense by ID.
func (s *Store) Expense(id string) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

// Categories returns a copy of the category list, built-ins first.
func (s *Store) Categories() []core.CategoryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

// LookupCategory finds a category by name, ignoring case.
func (s *Store) LookupCategory(name string) (core.CategoryInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(core.NormalizeCategoryName(name))
}

// ResolveCategory is LookupCategory with a fallback to the groceries
// category, for expenses whose category has since been deleted.
func (s *Store) ResolveCategory(name string) core.CategoryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ci, ok := s.lookupLocked(core.NormalizeCategoryName(name)); ok {
		return ci
	}
	if ci, ok := s.lookupLocked(core.FallbackCategoryID); ok {
		return ci
	}
	return core.DefaultCategories()[0]
}

func (s *Store) lookupLocked(normalized string) (core.CategoryInfo, bool) {
	for _, c := range s.categories {
		if c.Name == normalized {
			return c, true
		}
	}
	return core.CategoryInfo{}, false
}

// UserProfile returns the current profile.
func (s *Store) UserProfile() core.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// BudgetLimits returns a copy of all limits, including stale ones.
func (s *Store) BudgetLimits() core.BudgetLimits {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.Clone()
}

// BudgetLimit returns the limit for a category ID, zero if unset.
func (s *Store) BudgetLimit(categoryID string) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.Limit(categoryID)
}

// FilterState returns the current selection.
func (s *Store) FilterState() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.Category != nil {
		c := *st.Category
		st.Category = &c
	}
	return st
}

func (s *Store) SetTimeFrame(tf filter.TimeFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.TimeFrame = tf
}

// FilterByCategory selects a category; nil clears the selection.
func (s *Store) FilterByCategory(c *core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.state.Category = nil
		return
	}
	cp := *c
	s.state.Category = &cp
}

func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Query = q
}

func (s *Store) SetSortOrder(o filter.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Sort = o
}

// View derives the visible list and its aggregates as of now.
func (s *Store) View(now time.Time) filter.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(now)
}

func (s *Store) viewLocked(now time.Time) filter.Result {
	key := s.state.Key() + "|" + s.state.TimeFrame.Start(now).Format(time.RFC3339)
	if s.views != nil {
		if res, ok := s.views.Get(key); ok {
			return cloneResult(res)
		}
	}

	cats := make([]core.Category, len(s.categories))
	for i, ci := range s.categories {
		cats[i] = ci.Category()
	}
	res := filter.Apply(s.expenses, s.state, now, cats)
	if s.views != nil {
		s.views.Set(key, res)
	}
	return cloneResult(res)
}

func cloneResult(r filter.Result) filter.Result {
	r.Expenses = slices.Clone(r.Expenses)
	r.ByCategory = slices.Clone(r.ByCategory)
	return r
}

// TotalExpenses is the sum of the visible list.
func (s *Store) TotalExpenses(now time.Time) core.Money {
	return s.View(now).Total
}

// CategoryTotal is the spend of c within the current time frame and search.
func (s *Store) CategoryTotal(now time.Time, c core.Category) core.Money {
	return s.View(now).CategoryTotal(c)
}

// DailySeries buckets the visible list per day.
func (s *Store) DailySeries(now time.Time) []filter.DailyAmount {
	return filter.DailySeries(s.View(now).Expenses)
}

// BudgetStatuses compares each category's spend in the current scope with
// its limit.
func (s *Store) BudgetStatuses(now time.Time) []filter.BudgetStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.viewLocked(now)
	return filter.Budgets(s.categories, s.budgets, res.ByCategory)
}

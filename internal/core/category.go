package core

import (
	"strings"
)

// Builtin enumerates the four permanent categories.
type Builtin uint8

const (
	Groceries Builtin = iota + 1
	Food
	Transportation
	Entertainment
)

// FallbackCategoryID is the category consumers resolve to when an expense
// references a category that no longer exists.
const FallbackCategoryID = "groceries"

var builtinNames = [...]string{
	Groceries:      "groceries",
	Food:           "food",
	Transportation: "transportation",
	Entertainment:  "entertainment",
}

// Builtins lists the permanent categories in display order.
var Builtins = []Builtin{Groceries, Food, Transportation, Entertainment}

func (b Builtin) String() string {
	if b == 0 || int(b) >= len(builtinNames) {
		return ""
	}
	return builtinNames[b]
}

// Category returns the variant value for the built-in.
func (b Builtin) Category() Category {
	return Category{builtin: b}
}

// Category is either one of the four built-ins or a user-created category
// identified by its unique lowercase name. Use ParseCategory to build one so
// that equal names always produce equal values.
type Category struct {
	builtin Builtin
	custom  string
}

// ParseCategory normalizes name (trimmed, lowercased) and returns the
// built-in variant when the name matches one.
func ParseCategory(name string) Category {
	name = NormalizeCategoryName(name)
	if name == "" {
		return Category{}
	}
	for _, b := range Builtins {
		if builtinNames[b] == name {
			return Category{builtin: b}
		}
	}
	return Category{custom: name}
}

// NormalizeCategoryName trims and lowercases a category name.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Name returns the category name used as the foreign key from expenses.
func (c Category) Name() string {
	if c.builtin != 0 {
		return c.builtin.String()
	}
	return c.custom
}

// Builtin reports which built-in the category is, if any.
func (c Category) Builtin() (Builtin, bool) {
	return c.builtin, c.builtin != 0
}

// IsCustom reports whether the category is user-created.
func (c Category) IsCustom() bool {
	return c.builtin == 0 && c.custom != ""
}

// IsZero reports whether no category is set.
func (c Category) IsZero() bool {
	return c.builtin == 0 && c.custom == ""
}

func (c Category) String() string {
	return c.Name()
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	*c = ParseCategory(string(text))
	return nil
}

// CategoryInfo describes a category the user can pick.
type CategoryInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`
	Custom bool   `json:"isCustom,omitempty"`
}

// Category returns the variant value for this entry.
func (ci CategoryInfo) Category() Category {
	return ParseCategory(ci.Name)
}

// CategoryDraft is a category as submitted, before an ID is assigned.
type CategoryDraft struct {
	Name  string `validate:"notblank,max=40"`
	Color string `validate:"omitempty,hexcolor"`
	Icon  string
}

// Validate checks the draft as the categories screen does.
func (d CategoryDraft) Validate() error {
	return validateStruct(d)
}

const (
	DefaultCustomColor = "#E5E7EB"
	DefaultCustomIcon  = "shopping-cart"
)

// DefaultCategories returns a fresh copy of the built-in category list.
func DefaultCategories() []CategoryInfo {
	return []CategoryInfo{
		{ID: "groceries", Name: "groceries", Color: "#F2FCE2", Icon: "shopping-cart"},
		{ID: "food", Name: "food", Color: "#FEF7CD", Icon: "utensils"},
		{ID: "transportation", Name: "transportation", Color: "#FDE1D3", Icon: "car"},
		{ID: "entertainment", Name: "entertainment", Color: "#E5DEFF", Icon: "tv"},
	}
}

// IsDefaultCategoryID reports whether id belongs to a built-in category.
func IsDefaultCategoryID(id string) bool {
	for _, b := range Builtins {
		if builtinNames[b] == id {
			return true
		}
	}
	return false
}

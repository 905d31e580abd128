package core

import (
	"strings"

	"golang.org/x/text/currency"
)

type (
	Theme string

	Currency struct {
		Code   string `json:"code"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}

	UserProfile struct {
		Name     string   `json:"name"`
		Currency Currency `json:"currency"`
		Theme    Theme    `json:"theme"`
	}

	// ProfileUpdate carries the fields to change; nil fields are left as is.
	ProfileUpdate struct {
		Name     *string
		Currency *Currency
		Theme    *Theme
	}
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Currencies are the currencies offered on the profile screen.
var Currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
}

// DefaultUserProfile is used when no profile has been saved yet.
func DefaultUserProfile() UserProfile {
	return UserProfile{
		Name:     "User",
		Currency: Currency{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
		Theme:    ThemeLight,
	}
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// LookupCurrency finds a supported currency by ISO code (case-insensitive).
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// Validate checks the currency code against ISO 4217.
func (c Currency) Validate() error {
	if strings.TrimSpace(c.Symbol) == "" {
		return ErrInvalidCurrency
	}
	if _, err := currency.ParseISO(c.Code); err != nil {
		return ErrInvalidCurrency
	}
	return nil
}

// Validate checks the fields that are set.
func (u ProfileUpdate) Validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return ErrEmptyProfileName
	}
	if u.Theme != nil && !u.Theme.Valid() {
		return ErrInvalidTheme
	}
	if u.Currency != nil {
		if err := u.Currency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply shallow-merges the update into p.
func (p UserProfile) Apply(u ProfileUpdate) UserProfile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Currency != nil {
		p.Currency = *u.Currency
	}
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	return p
}

// IsZero reports whether the update changes nothing.
func (u ProfileUpdate) IsZero() bool {
	return u.Name == nil && u.Currency == nil && u.Theme == nil
}

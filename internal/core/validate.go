package core

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Money and Category are opaque structs; validate them by their scalar form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if m, ok := field.Interface().(Money); ok {
			return m.Cents
		}
		return nil
	}, Money{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if c, ok := field.Interface().(Category); ok {
			return c.Name()
		}
		return nil
	}, Category{})

	// Non-empty and not only whitespace
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// validateStruct runs the struct tags and maps the first failure to one of
// the package's sentinel errors.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.StructNamespace() {
	case "ExpenseDraft.Title":
		if fe.Tag() == "max" {
			return ErrTitleTooLong
		}
		return ErrEmptyTitle
	case "ExpenseDraft.Amount":
		return ErrInvalidAmount
	case "ExpenseDraft.Category":
		return ErrEmptyCategory
	case "ExpenseDraft.Notes":
		return ErrNotesTooLong
	case "CategoryDraft.Name":
		if fe.Tag() == "max" {
			return ErrCategoryNameLong
		}
		return ErrEmptyCategoryName
	case "CategoryDraft.Color":
		return ErrInvalidColor
	}
	return err
}

// Package validation provides request validation using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	domainerrors "github.com/eydough/awc-code-updater/internal/errors"
)

// messageTag names the struct tag holding a field's user-facing error message.
const messageTag = "message"

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error details
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Whitespace-only input counts as empty
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error.
//
// The error message is taken from the `message` tag of the first failing
// field, so a form can show one sentence; every failing field is listed in
// the error details.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(reflect.TypeOf(s), err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(t reflect.Type, err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msg := "validation failed"
	fieldErrors := make(map[string]string, len(validationErrs))
	for i, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
		if i == 0 {
			if custom := fieldMessage(t, e.StructField()); custom != "" {
				msg = custom
			}
		}
	}

	return domainerrors.ValidationWithDetails(msg, fieldErrors)
}

// fieldMessage looks up the message tag of a top-level struct field.
func fieldMessage(t reflect.Type, field string) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return ""
	}
	f, ok := t.FieldByName(field)
	if !ok {
		return ""
	}
	return f.Tag.Get(messageTag)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "url":
		return "must be a valid URL"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}

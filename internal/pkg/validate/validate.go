// Package validate wraps struct-tag validation and gives callers a
// single error type to map onto 400 responses.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Error is a caller-input validation failure; handlers surface its
// message with a 400 status.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds a validation error from a plain message.
func NewError(message string) *Error {
	return &Error{Message: message}
}

// Struct validates s against its `validate` tags and returns *Error
// describing the first offending field, or nil.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return &Error{Message: fmt.Sprintf("%s is required", field)}
	case "email":
		return &Error{Message: fmt.Sprintf("%s must be a valid email address", field)}
	default:
		return &Error{Message: fmt.Sprintf("%s is invalid", field)}
	}
}

// IsValidation reports whether err is (or wraps) a validation error.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

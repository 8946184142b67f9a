package model

import (
	"errors"
	"fmt"
)

var ErrInvalidField = errors.New("invalid field")

// FieldError reports a single field that failed validation.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrInvalidField, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidField }

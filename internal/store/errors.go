package store

import (
	"errors"
	"fmt"

	"github.com/nakachan-ing/tsk-cli/internal/model"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrDuplicateTitle     = errors.New("duplicate title")
	ErrNotFound           = errors.New("not found")
	ErrInvalidField       = model.ErrInvalidField
)

// Error is returned by every Store operation that fails.
// errors.Is(err, ErrNotFound) and friends match on Kind.
type Error struct {
	Op    string
	Kind  error
	Title string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	// field errors already name their kind
	if e.Err != nil && e.Title == "" && errors.Is(e.Err, e.Kind) {
		return e.Op + ": " + e.Err.Error()
	}
	msg := e.Op + ": " + e.Kind.Error()
	if e.Title != "" {
		msg += fmt.Sprintf(" %q", e.Title)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func storageErr(op string, err error) error {
	return &Error{Op: op, Kind: ErrStorageUnavailable, Err: err}
}

func notFound(op, title string, c model.Collection) error {
	return &Error{Op: op, Kind: ErrNotFound, Title: title, Err: fmt.Errorf("not in %s collection", c)}
}

func duplicate(op, title string, c model.Collection) error {
	return &Error{Op: op, Kind: ErrDuplicateTitle, Title: title, Err: fmt.Errorf("already in %s collection", c)}
}

func invalid(op string, err error) error {
	return &Error{Op: op, Kind: ErrInvalidField, Err: err}
}

package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn is returned when a column key is not in the registry.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNotSortable is returned when a sort is requested on a column with sorting disabled.
	ErrNotSortable = errors.New("column is not sortable")

	// ErrInvalidPageSize is returned when a page size is not positive.
	ErrInvalidPageSize = errors.New("page size must be positive")
)

// ConfigError reports an invalid column registry.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "grid config: " + e.Reason
	}
	return fmt.Sprintf("grid config: column %q: %s", e.Key, e.Reason)
}

// RowIdentityError reports a resolver failure or an ambiguous row identity.
type RowIdentityError struct {
	Index int
	ID    any
	Err   error
}

func (e *RowIdentityError) Error() string {
	return fmt.Sprintf("row identity at index %d: %v", e.Index, e.Err)
}

func (e *RowIdentityError) Unwrap() error { return e.Err }

var (
	errDuplicateID    = errors.New("duplicate row id")
	errUncomparableID = errors.New("row id is not comparable")
)

// AccessorError wraps an error returned by a column accessor or comparator.
type AccessorError struct {
	Column string
	Index  int
	Err    error
}

func (e *AccessorError) Error() string {
	return fmt.Sprintf("column %q at row %d: %v", e.Column, e.Index, e.Err)
}

func (e *AccessorError) Unwrap() error { return e.Err }

// unknownColumn builds an ErrUnknownColumn error with a suggestion when one is close enough.
func unknownColumn[R any](reg *Registry[R], key string) error {
	if s, ok := reg.Suggest(key); ok {
		return fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownColumn, key, s)
	}
	return fmt.Errorf("%w %q", ErrUnknownColumn, key)
}

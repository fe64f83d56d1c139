package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an image record does not exist or is not
// visible to the caller.
var ErrNotFound = errors.New("image not found")

// FieldError describes a single failed precondition on a request field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries one or more field-level precondition failures.
// Nothing is persisted when a ValidationError is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// StorageError wraps a blob store failure with the operation that caused it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

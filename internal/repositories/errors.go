package repositories

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotConnected is wrapped by a StorageError when the gateway has no
// collection to talk to.
var ErrNotConnected = errors.New("database not connected")

// ValidationError is returned when a record violates the schema, either
// before the write or as reported by the server's document validator.
// Fields maps each offending field to its reason.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ConflictError is returned when a write violates a unique index.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string { return "duplicate key: " + e.Err.Error() }
func (e *ConflictError) Unwrap() error { return e.Err }

// StorageError covers every other driver or connectivity failure. Err carries
// a stack trace from the point the gateway observed the failure.
type StorageError struct {
	Op  string
	Err error
}

func newStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: errors.WithStack(err)}
}

func (e *StorageError) Error() string { return e.Op + ": " + errors.Cause(e.Err).Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// Stack renders the captured stack trace.
func (e *StorageError) Stack() string {
	return fmt.Sprintf("%+v", e.Err)
}

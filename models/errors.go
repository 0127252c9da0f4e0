package models

import (
	"errors"
	"fmt"
)

// ErrIssueNotFound is returned when no issue exists for a given id.
var ErrIssueNotFound = errors.New("issue not found")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ValidationError reports missing or invalid caller input. It maps to a
// 400 response and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// StorageError wraps a backend failure. It maps to a 500 response and,
// when the cause is a connectivity problem on the persistent backend,
// triggers the one-way downgrade to in-memory storage.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

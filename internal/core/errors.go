package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("referenced entity not found")
	// ErrInvalidState is matched by every rejected state transition.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
)

var (
	ErrTemplateExpired        = &InvalidStateError{Reason: "recurring template has expired and was deleted"}
	ErrTemplateNotStarted     = &InvalidStateError{Reason: "recurring template has not started yet"}
	ErrTemplateAlreadyApplied = &InvalidStateError{Reason: "recurring template was already applied this month"}
	ErrDefaultAssetDelete     = &InvalidStateError{Reason: "the default asset cannot be deleted"}
	ErrCategoryInUse          = &InvalidStateError{Reason: "category is referenced by entries, recurring templates or budgets"}
)

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func NotFound(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidStateError is an operation rejected because of the current state.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string { return e.Reason }

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Err} }

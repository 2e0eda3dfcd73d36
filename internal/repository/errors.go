package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrPreconditionFailed is returned when a guarded write loses to a
	// concurrent or prior state change.
	ErrPreconditionFailed = errors.New("precondition no longer holds")
)

package store

import "errors"

var (
	// ErrNotFound is returned by mutations whose target row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a status change is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrFoundNotPending is returned when a match is written for a found item that is no longer pending.
	ErrFoundNotPending = errors.New("found item is not pending")
)

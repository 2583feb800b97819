package repository

import "errors"

var (
	// ErrNotFound is returned when no ticket matches the id and status predicate.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when required ticket fields are missing.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownStatus is returned when a stored record carries a status
	// outside the lifecycle.
	ErrUnknownStatus = errors.New("unknown ticket status")
)

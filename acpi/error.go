package acpi

import "errors"

var (
	// ErrInvalidParameter is a malformed or contradictory input.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrOutOfResources is an allocation failure.
	ErrOutOfResources = errors.New("out of resources")

	// ErrNotFound means the platform has no matching object.
	ErrNotFound = errors.New("not found")

	// ErrInternal is a broken invariant that valid input data never
	// triggers.
	ErrInternal = errors.New("internal invariant violation")

	// ErrAlreadyStarted is returned when a generator ID is registered twice.
	ErrAlreadyStarted = errors.New("already started")
)

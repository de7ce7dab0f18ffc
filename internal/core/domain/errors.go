package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDetachedNode indicates a text run no longer has a parent
	// and cannot be replaced in place.
	ErrDetachedNode = errors.New("node detached from document")

	// ErrStoreUnavailable indicates the configuration store could not be read or written.
	ErrStoreUnavailable = errors.New("configuration store unavailable")

	// ErrMalformedConfig indicates stored configuration has an unexpected shape.
	ErrMalformedConfig = errors.New("malformed configuration")
)

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

	// Remote Errors.

	// ErrFetchFailed indicates the remote endpoint could not be reached
	// and returned nothing usable.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrInvalidDocument indicates a payload that is not a JSON:API document
	// with typed, identified records.
	ErrInvalidDocument = errors.New("invalid JSON:API document")

	// Institution Creation Errors.
	// These are checked in order; the first one found aborts creation.

	// ErrIndexEndpointMissing indicates no index endpoint is configured.
	ErrIndexEndpointMissing = errors.New("index endpoint is not configured")

	// ErrIndexUnavailable indicates the index document could not be loaded.
	ErrIndexUnavailable = errors.New("index data unavailable")

	// ErrInvalidIndexKey indicates the index key is not listed in the index.
	ErrInvalidIndexKey = errors.New("invalid index key")

	// ErrItemEndpointMissing indicates the index item carries no list link.
	ErrItemEndpointMissing = errors.New("index item has no endpoint")

	// ErrItemUnavailable indicates the index item document could not be loaded.
	ErrItemUnavailable = errors.New("index item data unavailable")

	// ErrInvalidHEIKey indicates the institution key is not listed in the index item.
	ErrInvalidHEIKey = errors.New("invalid institution key")
)

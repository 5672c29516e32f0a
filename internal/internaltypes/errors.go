package internaltypes

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned by counter stores when no value is persisted.
	ErrNotFound = errors.New("not found")
)

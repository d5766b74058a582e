package store

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyResolved indicates the review item is no longer PENDING.
	ErrAlreadyResolved = errors.New("review item already resolved")
)

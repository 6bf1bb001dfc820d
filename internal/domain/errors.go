package domain

import "errors"

var (
	// ErrStoreUnavailable marks durable-store failures caused by lost connectivity
	// (bad connection, network error, timeout) rather than by the query itself.
	ErrStoreUnavailable = errors.New("listing store unavailable")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidGuests    = errors.New("invalid guests")
)

package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	// ErrStatusChanged means a compare-and-set transition found the
	// reservation in a different status than expected.
	ErrStatusChanged = errors.New("reservation status changed concurrently")

	ErrLockHeld = errors.New("reservation lock is held by another request")
)

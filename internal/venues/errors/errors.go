package errors

import "errors"

var (
	ErrNotFound = errors.New("venue not found")

	ErrInvalidID = errors.New("invalid venue ID format")

	ErrDuplicateName = errors.New("venue with this name already exists")
)

package domain

import "errors"

var (
	// ErrNotFound is returned by readers when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownFilter is returned when a query filter names an unsupported column.
	ErrUnknownFilter = errors.New("unknown filter")
)

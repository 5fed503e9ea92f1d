package database

import (
	"errors"
)

// Common database errors that can be checked using errors.Is(). Absence of
// a record is not covered here; stores model that with their own domain
// sentinels.
var (
	// ErrInvalidInput is returned when invalid input is provided to a store method.
	ErrInvalidInput = errors.New("invalid input data")

	// ErrQueryFailed is returned when a query execution fails.
	ErrQueryFailed = errors.New("query execution failed")
)

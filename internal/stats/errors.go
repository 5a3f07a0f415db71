package stats

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery marks a query the caller must fix before retrying.
	ErrInvalidQuery = errors.New("invalid metrics query")
	// ErrUnknownSprint is returned when none of the requested sprints exist.
	ErrUnknownSprint = errors.New("unknown sprint")
	// ErrNoData is returned when no snapshot has been loaded.
	ErrNoData = errors.New("no data loaded")
)

// ValidationError describes which query field was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidQuery
}

package table

import "errors"

// Common, reusable task-table errors. Using sentinel variables allows
// callers to reliably detect error conditions via errors.Is instead of
// brittle string comparisons.

var (
	// ErrNotFound is returned when the requested task does not exist in the
	// table.
	ErrNotFound = errors.New("table: not found")

	// ErrInvalidID indicates that the supplied id is empty or otherwise
	// invalid.
	ErrInvalidID = errors.New("table: invalid id")

	// ErrNilTask is returned when the caller attempts to register a nil
	// task.
	ErrNilTask = errors.New("table: nil task")
)

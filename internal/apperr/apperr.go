// Package apperr defines the sentinel error categories used across aquaneuron-sim.
//
// Error taxonomy
//
//	UserError         – caused by invalid user input (bad flag, unknown figure, bad config value).
//	                    The CLI prints only the message; usage help is NOT repeated.
//	                    Exit code: 1.
//
//	ErrCancelled      – the user aborted an interactive flow (figure selector, overwrite prompt).
//	                    Exit code: 0 (not a failure).
//
//	ErrMalformedTable – a literal constant table is inconsistent (mismatched parallel columns,
//	                    unknown keys). Programmer error, detected at startup.
//	                    Exit code: 1.
//
// Everything else is a plain Go error (fit failures, I/O, encoding, …) and is
// propagated with fmt.Errorf("context: %w", err) wrapping.
package apperr

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user explicitly aborts an interactive
// operation.  The CLI should exit 0 rather than 1 when it sees this error.
var ErrCancelled = errors.New("operation cancelled")

// ErrMalformedTable marks a literal data table that failed its startup checks.
var ErrMalformedTable = errors.New("malformed literal table")

// UserError represents an error caused by invalid or missing user input.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

// User creates a UserError with the given message.
func User(msg string) error { return &UserError{Message: msg} }

// Userf creates a formatted UserError.
func Userf(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// IsUser reports whether err is (or wraps) a *UserError.
func IsUser(err error) bool {
	var u *UserError
	return errors.As(err, &u)
}

// Table wraps ErrMalformedTable with the table name and a formatted reason.
func Table(table, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedTable, table, fmt.Sprintf(format, args...))
}

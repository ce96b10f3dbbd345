// Package exitcode defines structured exit codes for procdash commands.
// These codes let supervisors and scripts distinguish failure conditions
// without parsing error messages — in particular, a dead process manager
// at startup is reported differently from a usage error.
//
// Codes are grouped by category:
//   - 0: Success
//   - 1-9: General errors (usage, internal)
//   - 10-19: Resource not found
//   - 30-39: Network/connectivity errors
//   - 50-59: Conflict/state errors
package exitcode

import (
	"errors"
	"fmt"
)

// Exit codes for procdash commands.
const (
	// Success indicates the command completed successfully.
	Success = 0

	// General errors (1-9)
	ErrGeneral  = 1 // General/unknown error
	ErrUsage    = 2 // Invalid arguments or usage
	ErrInternal = 3 // Internal error (bug)

	// Resource not found (10-19)
	ErrProcessNotFound = 10 // Managed process not found
	ErrFileNotFound    = 11 // File or path not found

	// Network/connectivity (30-39)
	ErrManagerUnavailable = 30 // Process manager unreachable

	// Conflict/state errors (50-59)
	ErrConflict = 50 // Resource conflict (e.g., another instance running)
)

// Error wraps an error with a specific exit code.
type Error struct {
	Code    int
	Message string
	Cause   error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new coded error.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new coded error with printf-style formatting.
func Newf(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code int, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Code extracts the exit code from an error.
// Returns ErrGeneral (1) if the error doesn't have a code.
func Code(err error) int {
	if err == nil {
		return Success
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ErrGeneral
}

// Is checks if an error has a specific exit code.
func Is(err error, code int) bool {
	return Code(err) == code
}

// ProcessNotFound returns an error for a process id the manager doesn't know.
func ProcessNotFound(id int) *Error {
	return Newf(ErrProcessNotFound, "process not found: %d", id)
}

// ManagerUnavailable returns an error for an unreachable process manager.
func ManagerUnavailable(cause error) *Error {
	return Wrap(ErrManagerUnavailable, "process manager unreachable", cause)
}

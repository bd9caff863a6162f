// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors
	ErrNoData              = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrProviderUnavailable = &Error{Code: "PROVIDER_UNAVAILABLE", Message: "price history unavailable"}

	// Signal errors
	ErrInvalidTimestamp = &Error{Code: "INVALID_TIMESTAMP", Message: "invalid signal timestamp"}
	ErrInvalidSignal    = &Error{Code: "INVALID_SIGNAL", Message: "invalid signal fields"}
	ErrInvalidBatch     = &Error{Code: "INVALID_BATCH", Message: "invalid signal batch"}
	ErrSourceFailed     = &Error{Code: "SOURCE_FAILED", Message: "signal source failed"}

	// Job errors
	ErrJobNotFound = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}
	ErrJobFailed   = &Error{Code: "JOB_FAILED", Message: "job failed"}

	// Export errors
	ErrExportFailed = &Error{Code: "EXPORT_FAILED", Message: "report export failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

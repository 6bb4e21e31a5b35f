// Package errors provides domain-specific error types for netpolicy.
//
// Errors carry a code so callers can branch on the failure category with
// errors.Is against the exported sentinel values, regardless of message.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration file error (read, parse, write).
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeValidation indicates a validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeInitialization indicates the registry could not read its option source
	// and fell back to built-in defaults.
	ErrCodeInitialization ErrorCode = "INITIALIZATION_ERROR"

	// ErrCodeMalformedUserAgent indicates a user-agent record that was skipped during load.
	ErrCodeMalformedUserAgent ErrorCode = "MALFORMED_USER_AGENT"

	// ErrCodeUnknownUserAgent indicates a lookup of an identifier that is not loaded.
	ErrCodeUnknownUserAgent ErrorCode = "UNKNOWN_USER_AGENT"

	// ErrCodeUnknownOption indicates an option key the store does not define.
	ErrCodeUnknownOption ErrorCode = "UNKNOWN_OPTION"

	// ErrCodeStorage indicates a cookie jar or disk cache I/O failure.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"

	// ErrCodeMigration indicates a profile migration failure.
	ErrCodeMigration ErrorCode = "MIGRATION_ERROR"

	// ErrCodeOffline indicates a request that cannot be served while working offline.
	ErrCodeOffline ErrorCode = "OFFLINE_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Sentinel values for errors.Is comparisons. Only the code is compared.
var (
	ErrConfig             = New(ErrCodeConfig, "configuration error")
	ErrValidation         = New(ErrCodeValidation, "validation error")
	ErrInitialization     = New(ErrCodeInitialization, "initialization error")
	ErrMalformedUserAgent = New(ErrCodeMalformedUserAgent, "malformed user agent")
	ErrUnknownUserAgent   = New(ErrCodeUnknownUserAgent, "unknown user agent")
	ErrUnknownOption      = New(ErrCodeUnknownOption, "unknown option")
	ErrStorage            = New(ErrCodeStorage, "storage error")
	ErrMigration          = New(ErrCodeMigration, "migration error")
	ErrOffline            = New(ErrCodeOffline, "working offline")
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
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

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewInitializationError creates a new registry initialization error.
func NewInitializationError(message string, cause error) *Error {
	return Wrap(ErrCodeInitialization, message, cause)
}

// NewMalformedUserAgentError creates an error describing a skipped user-agent record.
func NewMalformedUserAgentError(message string, cause error) *Error {
	return Wrap(ErrCodeMalformedUserAgent, message, cause)
}

// NewUnknownUserAgentError creates an error for an identifier that is not loaded.
func NewUnknownUserAgentError(identifier string) *Error {
	return New(ErrCodeUnknownUserAgent, fmt.Sprintf("unknown user agent: %s", identifier))
}

// NewUnknownOptionError creates an error for an option key the store does not define.
func NewUnknownOptionError(key string) *Error {
	return New(ErrCodeUnknownOption, fmt.Sprintf("unknown option: %s", key))
}

// NewStorageError creates a new cookie jar or cache storage error.
func NewStorageError(message string, cause error) *Error {
	return Wrap(ErrCodeStorage, message, cause)
}

// NewMigrationError creates a new migration error.
func NewMigrationError(message string, cause error) *Error {
	return Wrap(ErrCodeMigration, message, cause)
}

// NewOfflineError creates an error for a request refused in offline mode.
func NewOfflineError(message string) *Error {
	return New(ErrCodeOffline, message)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
)

// ErrorCode represents standard API error codes.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates malformed or invalid request data.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"

	// ErrCodeForbidden indicates the client is not allowed to use the API.
	ErrCodeForbidden ErrorCode = "forbidden"

	// ErrCodeInternalError indicates an internal server error.
	ErrCodeInternalError ErrorCode = "internal_error"

	// ErrCodeValidationFailed indicates option validation failed.
	ErrCodeValidationFailed ErrorCode = "validation_failed"

	// ErrCodeOffline indicates a request that needs the network while working offline.
	ErrCodeOffline ErrorCode = "offline"

	// ErrCodeUpstream indicates a fetch through a session failed.
	ErrCodeUpstream ErrorCode = "upstream_error"

	// ErrCodeRateLimited indicates the client sent too many requests.
	ErrCodeRateLimited ErrorCode = "rate_limited"
)

// APIError represents a structured API error response.
type APIError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError for JSON responses.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code ErrorCode, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// WithDetails adds details to an APIError.
func (e APIError) WithDetails(details map[string]any) APIError {
	e.Details = details
	return e
}

// WriteError writes an error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, statusCode int, err APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err})
}

// WriteInvalidRequest writes a 400 Bad Request error.
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, NewAPIError(ErrCodeInvalidRequest, message))
}

// WriteNotFound writes a 404 Not Found error.
func WriteNotFound(w http.ResponseWriter, resource string) {
	WriteError(w, http.StatusNotFound, NewAPIError(ErrCodeNotFound, resource+" not found"))
}

// WriteForbidden writes a 403 Forbidden error.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// WriteInternalError writes a 500 Internal Server Error.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// WriteValidationError writes a 400 Bad Request with validation details.
func WriteValidationError(w http.ResponseWriter, message string, details map[string]any) {
	err := NewAPIError(ErrCodeValidationFailed, message).WithDetails(details)
	WriteError(w, http.StatusBadRequest, err)
}

// WriteDomainError maps a coded error from the registry layers to a response.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, nperrors.ErrValidation), errors.Is(err, nperrors.ErrUnknownOption):
		WriteValidationError(w, err.Error(), nil)
	case errors.Is(err, nperrors.ErrUnknownUserAgent):
		WriteError(w, http.StatusNotFound, NewAPIError(ErrCodeNotFound, err.Error()))
	case errors.Is(err, nperrors.ErrOffline):
		WriteError(w, http.StatusServiceUnavailable, NewAPIError(ErrCodeOffline, err.Error()))
	default:
		WriteInternalError(w, err.Error())
	}
}

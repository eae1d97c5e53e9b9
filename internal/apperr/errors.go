// Package apperr defines the error kinds surfaced at the API boundary and
// their mapping to HTTP status codes and client-safe messages.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrInvalidCredentials covers wrong password, unknown email and a rate-limited login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or invalid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a valid session without the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrTooManyRequests indicates the rate limiter denied the action.
	ErrTooManyRequests = errors.New("too many requests")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a business-rule violation on valid input.
	ErrConflict = errors.New("conflict")
	// ErrNotFound indicates the addressed record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable indicates a lower-layer storage failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field details that are safe to return to the caller.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Status maps an error to the HTTP status observed by callers.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the fixed client-facing message for an error.
// Unexpected errors collapse to a generic message.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials.Error()
	case errors.Is(err, ErrUnauthorized):
		return ErrUnauthorized.Error()
	case errors.Is(err, ErrForbidden):
		return ErrForbidden.Error()
	case errors.Is(err, ErrTooManyRequests):
		return ErrTooManyRequests.Error()
	case errors.Is(err, ErrValidation):
		return ErrValidation.Error()
	case errors.Is(err, ErrConflict):
		return ErrConflict.Error()
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	default:
		return "internal error"
	}
}

// IsExpected reports whether err is one of the known kinds rather than an
// unexpected failure that must be logged server-side.
func IsExpected(err error) bool {
	return Status(err) != http.StatusInternalServerError
}

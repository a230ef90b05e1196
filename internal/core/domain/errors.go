package domain

import (
	"errors"
	"strings"
)

// Authentication.
var (
	ErrMissingCredentials  = errors.New("missing credentials")
	ErrUnauthenticated     = errors.New("could not validate credentials")
	ErrInvalidCredentials  = errors.New("incorrect email or password")
	ErrUpstreamUnavailable = errors.New("identity service unavailable")
)

// Users.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("email already registered")
)

// Orders.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrVersionConflict    = errors.New("order was modified concurrently")
	ErrPreconditionFailed = errors.New("order version does not match")
)

// FieldViolation describes one invalid input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field input problems.
type ValidationError struct {
	Fields []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldViolation{{Field: field, Message: message}}}
}

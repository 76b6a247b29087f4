package bugapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the kind of failure talking to the analysis service
type ErrorType string

const (
	// ErrTypeValidation indicates the request was rejected before sending
	ErrTypeValidation ErrorType = "validation"

	// ErrTypeServer indicates a non-2xx response from the service
	ErrTypeServer ErrorType = "server"

	// ErrTypeNetwork indicates the request never produced a response
	ErrTypeNetwork ErrorType = "network"

	// ErrTypeDecode indicates a 2xx response whose body was not a valid payload
	ErrTypeDecode ErrorType = "decode"

	// ErrTypeCanceled indicates the caller abandoned the request
	ErrTypeCanceled ErrorType = "canceled"

	// ErrTypeConfiguration indicates a bad client configuration
	ErrTypeConfiguration ErrorType = "configuration"
)

// ServiceError represents a failed exchange with the Bug Analysis Service
type ServiceError struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Message is a short description for logs
	Message string `json:"message"`

	// Detail is the service-provided "detail" field, if any
	Detail string `json:"detail,omitempty"`

	// StatusCode for non-2xx responses
	StatusCode int `json:"status_code,omitempty"`

	// RequestID is the X-Request-ID sent with the request
	RequestID string `json:"request_id,omitempty"`

	// Cause is the underlying error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	parts := []string{fmt.Sprintf("type=%s", e.Type)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Detail != "" {
		parts = append(parts, fmt.Sprintf("detail=%s", e.Detail))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Is matches another ServiceError of the same Type
func (e *ServiceError) Is(target error) bool {
	if se, ok := target.(*ServiceError); ok {
		return e.Type == se.Type
	}
	return false
}

// ValidationError represents input rejected before any request is made
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewServiceError creates a new service error
func NewServiceError(errType ErrorType, message string) *ServiceError {
	return &ServiceError{Type: errType, Message: message}
}

// NewServiceErrorWithCause creates a service error with an underlying cause
func NewServiceErrorWithCause(errType ErrorType, message string, cause error) *ServiceError {
	return &ServiceError{Type: errType, Message: message, Cause: cause}
}

// NewValidationError creates a validation error
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// transportError classifies an http.Client failure
func transportError(ctx context.Context, message string, err error) *ServiceError {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return NewServiceErrorWithCause(ErrTypeCanceled, message, err)
	}
	return NewServiceErrorWithCause(ErrTypeNetwork, message, err)
}

// UserMessage returns the single user-visible string for err.
// Only a server error carrying a detail is shown verbatim; everything else
// collapses to fallback.
func UserMessage(err error, fallback string) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Type == ErrTypeServer && strings.TrimSpace(se.Detail) != "" {
		return se.Detail
	}
	return fallback
}

// IsCanceled reports whether err came from an abandoned request
func IsCanceled(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Type == ErrTypeCanceled
	}
	return errors.Is(err, context.Canceled)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Type == ErrTypeValidation
	}
	return false
}

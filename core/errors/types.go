// ABOUTME: Custom error types for the core business logic
// ABOUTME: Translates upstream and parsing failures into structured errors for API responses

package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ParseError is returned when a fetched document does not have the expected shape
type ParseError struct {
	Page    string
	Message string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Page == "" {
		return fmt.Sprintf("parse error: %s", e.Message)
	}
	return fmt.Sprintf("parse error in %s page: %s", e.Page, e.Message)
}

// UpstreamError represents a response from the upstream site that is neither
// a recognised error sentence nor a well-formed document
type UpstreamError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error for %q: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream error for %q: %s", e.Path, e.Message)
}

// Unwrap returns the underlying cause
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ClientActionRejectedError is returned when the upstream refuses a write-style
// action for domain reasons (bad vote direction, duplicate vote, bad credentials)
type ClientActionRejectedError struct {
	Message string
}

// Error implements the error interface
func (e *ClientActionRejectedError) Error() string {
	return e.Message
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsParse checks if an error is a ParseError
func IsParse(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsUpstream checks if an error is an UpstreamError
func IsUpstream(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr)
}

// IsClientActionRejected checks if an error is a ClientActionRejectedError
func IsClientActionRejected(err error) bool {
	var rejectedErr *ClientActionRejectedError
	return errors.As(err, &rejectedErr)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

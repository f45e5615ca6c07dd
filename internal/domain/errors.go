package domain

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is. Adapters translate them to transport
// codes; nothing in this package knows about HTTP.
var (
	// ErrFetchFailure covers every way the outbound quote fetch can fail:
	// transport errors, non-success status, undecodable or empty bodies.
	ErrFetchFailure = errors.New("fetch failure")

	// ErrNotFound means the upstream answered 404.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed input or an undecodable upstream body.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable means the upstream could not serve the request.
	ErrUnavailable = errors.New("unavailable")
)

// FetchError is the only error a quote source returns. It matches
// ErrFetchFailure and, through Cause, whatever went wrong underneath.
type FetchError struct {
	Source string
	Reason string
	Cause  error
}

// Error names the source, then the reason and cause when present.
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch from %q failed", e.Source)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap exposes ErrFetchFailure and the cause to errors.Is and errors.As.
func (e *FetchError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrFetchFailure}
	}

	return []error{ErrFetchFailure, e.Cause}
}

// NewFetchError creates a fetch error for source. cause may be nil.
func NewFetchError(source, reason string, cause error) error {
	return &FetchError{Source: source, Reason: reason, Cause: cause}
}

// NotFoundError is a 404 from the upstream, kept as the cause of a FetchError.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError creates a not found error for entity. id may be empty.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError rejects malformed input, such as a non-numeric position
// or an upstream body that is not a JSON array of strings.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue records the rejected value for the error envelope.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// UnavailableError means the upstream could not be reached or answered 5xx,
// or its circuit is open.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("service %q unavailable", e.Service)
	}

	return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
}

// Unwrap returns ErrUnavailable.
func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// NewUnavailableError creates an unavailable error for service.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// IsFetchFailure reports whether err is a failed quote fetch.
func IsFetchFailure(err error) bool {
	return errors.Is(err, ErrFetchFailure)
}

// IsNotFound reports whether err matches ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err matches ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable reports whether err matches ErrUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

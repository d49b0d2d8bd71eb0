package model

import (
	"errors"
	"fmt"
)

// ValidationError represents malformed caller input (hours out of range,
// future date, blank required title).
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error (including wrapped errors).
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// NotFoundError represents a missing resource for the caller.
type NotFoundError struct {
	Resource string
	Message  string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("not found %s: %s", e.Resource, e.Message)
}

// NewNotFoundError constructs NotFoundError.
func NewNotFoundError(resource, message string) NotFoundError {
	return NotFoundError{Resource: resource, Message: message}
}

// IsNotFoundError checks if error is NotFoundError.
func IsNotFoundError(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

// ConflictError represents a unique constraint or duplicate resource error.
type ConflictError struct {
	Field   string
	Message string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

// NewConflictError constructs ConflictError.
func NewConflictError(field, message string) ConflictError {
	return ConflictError{Field: field, Message: message}
}

// IsConflictError checks if error is ConflictError.
func IsConflictError(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// InsufficientTokensError is returned when a debit would drive the balance
// negative. Available and Required let the client react.
type InsufficientTokensError struct {
	Available int
	Required  int
}

func (e InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient tokens: have %d, need %d", e.Available, e.Required)
}

// IsInsufficientTokens checks if error is InsufficientTokensError.
func IsInsufficientTokens(err error) bool {
	var ie InsufficientTokensError
	return errors.As(err, &ie)
}

// InvalidStateTransitionError is returned when a transaction is approved or
// rejected from a non-pending state.
type InvalidStateTransitionError struct {
	Current TransactionStatus
	Target  TransactionStatus
}

func (e InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.Current, e.Target)
}

// IsInvalidStateTransition checks if error is InvalidStateTransitionError.
func IsInvalidStateTransition(err error) bool {
	var se InvalidStateTransitionError
	return errors.As(err, &se)
}

// EnhancementErrorKind classifies AI-gateway failures.
type EnhancementErrorKind string

const (
	// MissingCredential: no provider API key configured; detected before
	// any network call.
	MissingCredential EnhancementErrorKind = "MISSING_CREDENTIAL"
	// ProviderFailure: the external API errored or timed out.
	ProviderFailure EnhancementErrorKind = "PROVIDER_FAILURE"
	// UnparsableResponse: the provider reply did not contain the expected
	// JSON object.
	UnparsableResponse EnhancementErrorKind = "UNPARSABLE_RESPONSE"
)

// EnhancementError aborts a single enhancement request. All kinds leave
// persisted state unchanged.
type EnhancementError struct {
	Kind   EnhancementErrorKind
	Detail string
}

func (e EnhancementError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("enhancement failed: %s", e.Kind)
	}
	return fmt.Sprintf("enhancement failed: %s: %s", e.Kind, e.Detail)
}

// NewEnhancementError constructs EnhancementError.
func NewEnhancementError(kind EnhancementErrorKind, detail string) EnhancementError {
	return EnhancementError{Kind: kind, Detail: detail}
}

// AsEnhancementError extracts an EnhancementError if present.
func AsEnhancementError(err error) (EnhancementError, bool) {
	var ee EnhancementError
	ok := errors.As(err, &ee)
	return ee, ok
}

package shared

import (
	"errors"
	"fmt"
)

// DomainError is the base error type for all domain errors. Status carries
// the HTTP-like code surfaced in command responses; Code is an optional
// machine tag for clients that dispatch on failure kind.
type DomainError struct {
	Message string
	Status  int
	Code    string
}

func (e *DomainError) Error() string {
	return e.Message
}

// domain is promoted through every embedding error type so that StatusOf
// and CodeOf can reach the base record without per-type Unwrap boilerplate.
func (e *DomainError) domain() *DomainError { return e }

type domainHolder interface{ domain() *DomainError }

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message, Status: 500, Code: "internal"}
}

// Validation errors (400)

type ValidationError struct {
	*DomainError
	Field string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s: %s", field, message), Status: 400},
		Field:       field,
	}
}

// TypeError marks a type-level violation: non-integer where an integer was
// expected, negative quantity (422).
type TypeError struct {
	*DomainError
	Field string
}

func NewTypeError(field, message string) *TypeError {
	return &TypeError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s: %s", field, message), Status: 422},
		Field:       field,
	}
}

// Authorization errors (403)

type AuthorizationError struct {
	*DomainError
}

func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{DomainError: &DomainError{Message: message, Status: 403}}
}

// Not-found errors (404)

type NotFoundError struct {
	*DomainError
	Kind string
	ID   string
}

func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s not found: %s", kind, id), Status: 404},
		Kind:        kind,
		ID:          id,
	}
}

// State-conflict errors (409)

type ConflictError struct {
	*DomainError
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{DomainError: &DomainError{Message: message, Status: 409}}
}

// NewConflictErrorCode tags the conflict with a machine code
// (e.g. "stale_round", "contention").
func NewConflictErrorCode(code, message string) *ConflictError {
	return &ConflictError{DomainError: &DomainError{Message: message, Status: 409, Code: code}}
}

type StaleRoundError struct {
	*ConflictError
	Submitted int
	Current   int
}

func NewStaleRoundError(submitted, current int) *StaleRoundError {
	return &StaleRoundError{
		ConflictError: NewConflictErrorCode("stale_round",
			fmt.Sprintf("round %d is no longer current (now %d)", submitted, current)),
		Submitted: submitted,
		Current:   current,
	}
}

// Combat errors

type NoOpponentsError struct {
	*DomainError
}

func NewNoOpponentsError(sectorID int) *NoOpponentsError {
	return &NoOpponentsError{
		DomainError: &DomainError{
			Message: fmt.Sprintf("no opponents in sector %d", sectorID),
			Status:  400,
			Code:    "no_opponents",
		},
	}
}

// Credit errors

type InsufficientCreditsError struct {
	*DomainError
	Required  int
	Available int
}

func NewInsufficientCreditsError(required, available int) *InsufficientCreditsError {
	return &InsufficientCreditsError{
		DomainError: &DomainError{
			Message: fmt.Sprintf("insufficient credits: need %d, have %d", required, available),
			Status:  400,
		},
		Required:  required,
		Available: available,
	}
}

// Subsystem unavailable (503)

type UnavailableError struct {
	*DomainError
	Subsystem string
}

func NewUnavailableError(subsystem string) *UnavailableError {
	return &UnavailableError{
		DomainError: &DomainError{
			Message: fmt.Sprintf("%s is not available", subsystem),
			Status:  503,
		},
		Subsystem: subsystem,
	}
}

// StatusOf extracts the HTTP-like status from an error chain, defaulting to
// 500 for errors that did not originate in the domain.
func StatusOf(err error) int {
	var h domainHolder
	if errors.As(err, &h) {
		return h.domain().Status
	}
	return 500
}

// CodeOf extracts the machine code, if any.
func CodeOf(err error) string {
	var h domainHolder
	if errors.As(err, &h) {
		return h.domain().Code
	}
	return "internal"
}

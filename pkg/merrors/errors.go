// Package merrors defines the typed error values shared across the
// persistent store, the assignment protocol, and the HTTP surface, so
// a repository failure carries enough shape for the HTTP adapter to
// pick the right status code without re-deriving it from a string.
package merrors

import (
	"fmt"
	"strings"
)

// EntityNotFoundError records a lookup that found nothing: an
// experiment, a package, an agent, a result row.
type EntityNotFoundError struct {
	EntityType string
	Message    string
	Code       string
	Err        error
}

func NewEntityNotFoundError(entityType string) EntityNotFoundError {
	return EntityNotFoundError{EntityType: entityType}
}

func WrapEntityNotFoundError(entityType string, err error) EntityNotFoundError {
	return EntityNotFoundError{EntityType: entityType, Err: err}
}

func (e EntityNotFoundError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}

	if strings.TrimSpace(e.EntityType) != "" {
		return fmt.Sprintf("%s not found", e.EntityType)
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return "entity not found"
}

func (e EntityNotFoundError) Unwrap() error { return e.Err }

// ValidationError records a malformed or inconsistent request body:
// unknown toolchain, duplicate toolchains, unrecognized mode flags.
type ValidationError struct {
	EntityType string
	Message    string
	Code       string
	Err        error
}

func (e ValidationError) Error() string {
	if strings.TrimSpace(e.Code) != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	return e.Message
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError records an operation rejected because of the current
// state of the entity: completing an already-completed experiment,
// assigning a crate already claimed by another agent.
type ConflictError struct {
	EntityType string
	Message    string
	Code       string
	Err        error
}

func (e ConflictError) Error() string { return e.Message }

func (e ConflictError) Unwrap() error { return e.Err }

// UnauthorizedError indicates a missing or unrecognized agent bearer
// token.
type UnauthorizedError struct {
	Message string
	Code    string
}

func (e UnauthorizedError) Error() string { return e.Message }

// UnprocessableOperationError indicates a request that is well formed
// but cannot be carried out: a crate retry requested past its attempt
// cap, a report requested for an experiment still running.
type UnprocessableOperationError struct {
	EntityType string
	Message    string
	Code       string
	Err        error
}

func (e UnprocessableOperationError) Error() string { return e.Message }

func (e UnprocessableOperationError) Unwrap() error { return e.Err }

// InternalServerError wraps an error whose detail is not safe or
// useful to report to the caller verbatim.
type InternalServerError struct {
	EntityType string
	Message    string
	Code       string
	Err        error
}

func (e InternalServerError) Error() string { return e.Message }

func (e InternalServerError) Unwrap() error { return e.Err }

// ValidateInternalError wraps err as an InternalServerError with a
// fixed public-facing message, mirroring how store failures are kept
// out of agent-facing and dashboard-facing responses.
func ValidateInternalError(err error, entityType string) error {
	return InternalServerError{
		EntityType: entityType,
		Code:       ErrInternalServer.Error(),
		Message:    "the server encountered an unexpected error processing this request",
		Err:        err,
	}
}

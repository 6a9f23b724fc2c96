// Package services provides the application layer between transports and the lifecycle core.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/persistence"
)

// Business logic errors. Validation errors map to 400, conflicts to 409.
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidStatus   = errors.New("invalid work item status")
	ErrEmptyActor      = errors.New("actor cannot be empty")
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
	ErrEmptyType       = errors.New("work item type is required")
)

// ServiceError wraps service-level errors with operation context.
type ServiceError struct {
	Op      string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyActor) ||
		errors.Is(err, ErrInvalidDecision) ||
		errors.Is(err, ErrEmptyType)
}

// IsConflictError checks if an error should map to HTTP 409: a decision
// against the state machine, or a lost-update conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, models.ErrInvalidTransition) ||
		errors.Is(err, persistence.ErrStatusConflict)
}

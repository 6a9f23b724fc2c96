package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkItemNotFound indicates a work item was not found by the given identifier.
	ErrWorkItemNotFound = errors.New("work item not found")

	// ErrStatusConflict indicates a compare-and-swap failed because the
	// stored status no longer matches the status the caller read.
	ErrStatusConflict = errors.New("work item status changed concurrently")

	// ErrInvalidStatus indicates an unknown work item status was provided.
	ErrInvalidStatus = errors.New("invalid work item status")
)

// WorkItemError wraps work-item-related errors with operation context.
type WorkItemError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save")
	WorkItemID string
	Err        error
}

func (e *WorkItemError) Error() string {
	return fmt.Sprintf("%s operation failed for work item %s: %v", e.Op, e.WorkItemID, e.Err)
}

func (e *WorkItemError) Unwrap() error {
	return e.Err
}

func (e *WorkItemError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkItemError creates a new work item error with context.
func NewWorkItemError(op, workItemID string, err error) *WorkItemError {
	return &WorkItemError{
		Op:         op,
		WorkItemID: workItemID,
		Err:        err,
	}
}

// IsWorkItemNotFound checks if an error indicates a work item was not found.
func IsWorkItemNotFound(err error) bool {
	return errors.Is(err, ErrWorkItemNotFound)
}

// IsStatusConflict checks if an error indicates a lost-update conflict.
func IsStatusConflict(err error) bool {
	return errors.Is(err, ErrStatusConflict)
}

// Package models defines the core domain models for the approval-gated automation pipeline.
package models

import (
	"errors"
	"time"
)

// WorkItemStatus represents the lifecycle state of a work item.
type WorkItemStatus string

const (
	WorkItemStatusNew             WorkItemStatus = "new"              // Ingested, not yet planned
	WorkItemStatusPlanned         WorkItemStatus = "planned"          // Plan attached, not yet submitted
	WorkItemStatusPendingApproval WorkItemStatus = "pending_approval" // Awaiting a human decision
	WorkItemStatusApproved        WorkItemStatus = "approved"         // Cleared for dispatch
	WorkItemStatusDispatched      WorkItemStatus = "dispatched"       // Executor invocation in flight
	WorkItemStatusRejected        WorkItemStatus = "rejected"         // Terminal, human declined
	WorkItemStatusExpired         WorkItemStatus = "expired"          // Terminal, deadline passed undecided
	WorkItemStatusDone            WorkItemStatus = "done"             // Terminal, executed successfully
	WorkItemStatusFailed          WorkItemStatus = "failed"           // Terminal, execution gave up
)

// ErrInvalidTransition is returned when a status change is requested
// outside the edges of the lifecycle state machine.
var ErrInvalidTransition = errors.New("invalid work item status transition")

// transitions holds the allowed edges of the work item state machine.
// Terminal states (rejected, expired, done, failed) have no outgoing edges.
var transitions = map[WorkItemStatus][]WorkItemStatus{
	WorkItemStatusNew:             {WorkItemStatusPlanned},
	WorkItemStatusPlanned:         {WorkItemStatusPendingApproval},
	WorkItemStatusPendingApproval: {WorkItemStatusApproved, WorkItemStatusRejected, WorkItemStatusExpired},
	WorkItemStatusApproved:        {WorkItemStatusDispatched, WorkItemStatusFailed},
	WorkItemStatusDispatched:      {WorkItemStatusDone, WorkItemStatusFailed, WorkItemStatusApproved},
}

// CanTransition reports whether the state machine allows moving from one
// status to another. The dispatched -> approved edge covers a retry after
// a transient executor failure.
func CanTransition(from, to WorkItemStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(status WorkItemStatus) bool {
	return len(transitions[status]) == 0
}

// WorkItem is a unit of work flowing through intake, planning, approval
// and execution. The persisted status field is the system of record;
// folder placement is a projection of it.
type WorkItem struct {
	ID               string         `json:"id"                          validate:"required"`
	Type             string         `json:"type"                        validate:"required"`
	Status           WorkItemStatus `json:"status"                      validate:"required"`
	Priority         string         `json:"priority,omitempty"`
	Payload          map[string]any `json:"payload,omitempty"`
	Plan             []Step         `json:"plan,omitempty"`
	Attempts         int            `json:"attempts"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DecisionDeadline *time.Time     `json:"decision_deadline,omitempty"`
}

// Transition moves the item to a new status, enforcing the state machine.
func (w *WorkItem) Transition(to WorkItemStatus) error {
	if !CanTransition(w.Status, to) {
		return ErrInvalidTransition
	}

	w.Status = to
	w.UpdatedAt = time.Now().UTC()

	return nil
}

// DeadlinePassed reports whether the decision deadline is set and has elapsed.
func (w *WorkItem) DeadlinePassed(now time.Time) bool {
	return w.DecisionDeadline != nil && !w.DecisionDeadline.After(now)
}

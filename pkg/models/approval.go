package models

import "time"

// Decision is the outcome recorded for a pending work item.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionExpired  Decision = "expired"
)

// ActorSystem marks decisions made by the sweeper rather than a human.
const ActorSystem = "system"

// ApprovalRecord is one immutable audit trail entry for a decision.
type ApprovalRecord struct {
	WorkItemID string    `json:"work_item_id" validate:"required"`
	Decision   Decision  `json:"decision"     validate:"required"`
	Actor      string    `json:"actor"        validate:"required"`
	DecidedAt  time.Time `json:"decided_at"`
}

// ValidDecision reports whether a decision value is one of the known outcomes.
func ValidDecision(d Decision) bool {
	switch d {
	case DecisionApproved, DecisionRejected, DecisionExpired:
		return true
	default:
		return false
	}
}

package web

// CreateWorkItemRequest is the body for creating a work item.
type CreateWorkItemRequest struct {
	Type        string         `json:"type"        validate:"required"`
	Priority    string         `json:"priority"`
	Description string         `json:"description" validate:"required"`
	Payload     map[string]any `json:"payload"`
}

// DecisionRequest is the body for recording a decision.
type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Actor    string `json:"actor"    validate:"required"`
}

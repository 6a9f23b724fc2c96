// Package protocol defines the contracts between the lifecycle manager and executors.
package protocol

import (
	"context"
	"log/slog"
)

// ExecutionResult is the confirmation returned by a successful execution.
type ExecutionResult struct {
	// Reference identifies the produced artifact (message id, file path, ...).
	Reference string         `json:"reference"`
	Details   map[string]any `json:"details,omitempty"`
}

// Executor performs one external side effect type. Implementations must
// bound every external call with the deadline carried by ctx.
type Executor interface {
	Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (*ExecutionResult, error)
}

// ExecutorFactory builds executors for one capability tag.
type ExecutorFactory interface {
	// ID returns the capability tag the factory is registered under.
	ID() string
	Create(config map[string]any) (Executor, error)
	// Schema returns the JSON schema payloads are validated against
	// before dispatch. A nil schema skips validation.
	Schema() map[string]any
}

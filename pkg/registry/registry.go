// Package registry maps capability tags to executor factories.
package registry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dukex/factotum/pkg/protocol"
)

// ErrUnknownCapability indicates no executor is registered for a type tag.
// Items hitting this become terminal failed, never silently dropped.
var ErrUnknownCapability = errors.New("no executor registered for capability")

// ErrPayloadInvalid indicates the payload failed the executor's schema.
var ErrPayloadInvalid = errors.New("payload does not match executor schema")

type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.ExecutorFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]protocol.ExecutorFactory),
	}
}

func (r *Registry) RegisterExecutor(factory protocol.ExecutorFactory) {
	r.factories[factory.ID()] = factory
	r.logger.Debug("Registered executor", "capability", factory.ID())
}

// IsRegistered reports whether a capability tag has an executor.
func (r *Registry) IsRegistered(capability string) bool {
	_, exists := r.factories[capability]

	return exists
}

// Capabilities returns the registered capability tags.
func (r *Registry) Capabilities() []string {
	tags := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}

	return tags
}

// CreateExecutor builds an executor for a capability tag.
func (r *Registry) CreateExecutor(capability string, config map[string]any) (protocol.Executor, error) {
	factory, ok := r.factories[capability]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, capability)
	}

	return factory.Create(config)
}

// ValidatePayload checks a payload against the registered factory's JSON
// schema before any external effect is attempted.
func (r *Registry) ValidatePayload(capability string, payload map[string]any) error {
	factory, ok := r.factories[capability]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCapability, capability)
	}

	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to validate payload for %s: %w", capability, err)
	}

	if !result.Valid() {
		details := ""
		for _, desc := range result.Errors() {
			details += desc.String() + "; "
		}

		return fmt.Errorf("%w: %s", ErrPayloadInvalid, details)
	}

	return nil
}

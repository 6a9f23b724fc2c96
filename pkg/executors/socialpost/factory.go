package socialpost

import "github.com/dukex/factotum/pkg/protocol"

// Factory builds social post executors targeting a default endpoint.
type Factory struct {
	endpoint string
}

func NewFactory(endpoint string) *Factory {
	return &Factory{endpoint: endpoint}
}

func (f *Factory) ID() string {
	return "social_post"
}

func (f *Factory) Create(config map[string]any) (protocol.Executor, error) {
	endpoint := f.endpoint
	if configured, ok := config["endpoint"].(string); ok && configured != "" {
		endpoint = configured
	}

	return NewExecutor(endpoint), nil
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Post content. Falls back to the item description.",
			},
			"description": map[string]any{
				"type": "string",
			},
			"endpoint": map[string]any{
				"type":        "string",
				"description": "Override for the configured webhook endpoint.",
			},
		},
	}
}

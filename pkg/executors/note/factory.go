package note

import "github.com/dukex/factotum/pkg/protocol"

// Factory builds note executors writing under a base directory.
type Factory struct {
	dir string
}

func NewFactory(dir string) *Factory {
	return &Factory{dir: dir}
}

func (f *Factory) ID() string {
	return "note"
}

func (f *Factory) Create(config map[string]any) (protocol.Executor, error) {
	dir := f.dir
	if configured, ok := config["dir"].(string); ok && configured != "" {
		dir = configured
	}

	return NewExecutor(dir), nil
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Note title, also used for the filename.",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Note content. Falls back to the item description.",
			},
			"description": map[string]any{
				"type": "string",
			},
		},
	}
}

package email

import (
	"github.com/dukex/factotum/pkg/credentials"
	"github.com/dukex/factotum/pkg/protocol"
)

// Factory builds email executors. Credential loading happens per Create
// call and fails closed: a missing or invalid credential file yields an
// error, never a degraded executor.
type Factory struct {
	store *credentials.Store
}

func NewFactory(store *credentials.Store) *Factory {
	return &Factory{store: store}
}

func (f *Factory) ID() string {
	return "email"
}

func (f *Factory) Create(_ map[string]any) (protocol.Executor, error) {
	creds, err := f.store.LoadSMTP()
	if err != nil {
		return nil, err
	}

	return NewExecutor(creds), nil
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient email address.",
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Message subject line.",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Plain text message body. Falls back to the item description.",
			},
			"description": map[string]any{
				"type": "string",
			},
		},
		"required": []string{"to", "subject"},
	}
}

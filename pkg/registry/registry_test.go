package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/factotum/pkg/log"
	"github.com/dukex/factotum/pkg/protocol"
)

type stubExecutor struct{}

func (s *stubExecutor) Execute(_ context.Context, _ map[string]any, _ *slog.Logger) (*protocol.ExecutionResult, error) {
	return &protocol.ExecutionResult{Reference: "stub"}, nil
}

type stubFactory struct {
	id     string
	schema map[string]any
}

func (f *stubFactory) ID() string { return f.id }

func (f *stubFactory) Create(_ map[string]any) (protocol.Executor, error) {
	return &stubExecutor{}, nil
}

func (f *stubFactory) Schema() map[string]any { return f.schema }

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := NewRegistry(log.WithModule("test"))
	reg.RegisterExecutor(&stubFactory{id: "email"})

	assert.True(t, reg.IsRegistered("email"))
	assert.False(t, reg.IsRegistered("fax"))
	assert.ElementsMatch(t, []string{"email"}, reg.Capabilities())

	executor, err := reg.CreateExecutor("email", nil)
	require.NoError(t, err)
	assert.NotNil(t, executor)
}

func TestRegistry_CreateExecutor_Unknown(t *testing.T) {
	reg := NewRegistry(log.WithModule("test"))

	_, err := reg.CreateExecutor("fax", nil)
	require.ErrorIs(t, err, ErrUnknownCapability)
}

func TestRegistry_ValidatePayload(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{"type": "string"},
		},
		"required": []string{"to"},
	}

	reg := NewRegistry(log.WithModule("test"))
	reg.RegisterExecutor(&stubFactory{id: "email", schema: schema})

	err := reg.ValidatePayload("email", map[string]any{"to": "a@example.com"})
	require.NoError(t, err)

	err = reg.ValidatePayload("email", map[string]any{"subject": "no recipient"})
	require.ErrorIs(t, err, ErrPayloadInvalid)

	err = reg.ValidatePayload("fax", map[string]any{})
	require.ErrorIs(t, err, ErrUnknownCapability)
}

func TestRegistry_ValidatePayload_NilSchema(t *testing.T) {
	reg := NewRegistry(log.WithModule("test"))
	reg.RegisterExecutor(&stubFactory{id: "note"})

	require.NoError(t, reg.ValidatePayload("note", map[string]any{"anything": true}))
}

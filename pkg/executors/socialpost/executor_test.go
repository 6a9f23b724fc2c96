package socialpost

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/factotum/pkg/log"
	"github.com/dukex/factotum/pkg/protocol"
)

func TestExecutor_Execute(t *testing.T) {
	var received string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(body)
		received = string(body)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	executor := NewExecutor(server.URL)

	result, err := executor.Execute(t.Context(), map[string]any{
		"message": "release is out",
	}, log.WithModule("test"))
	require.NoError(t, err)

	assert.Contains(t, result.Reference, server.URL)
	assert.JSONEq(t, `{"text": "release is out"}`, received)
}

func TestExecutor_Execute_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	executor := NewExecutor(server.URL)

	_, err := executor.Execute(t.Context(), map[string]any{"message": "x"}, log.WithModule("test"))
	require.Error(t, err)
	assert.True(t, protocol.IsTransient(err))
	assert.False(t, protocol.IsPermanent(err))
}

func TestExecutor_Execute_ClientErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	executor := NewExecutor(server.URL)

	_, err := executor.Execute(t.Context(), map[string]any{"message": "x"}, log.WithModule("test"))
	require.Error(t, err)
	assert.True(t, protocol.IsPermanent(err))
}

func TestExecutor_Execute_UnreachableIsTransient(t *testing.T) {
	executor := NewExecutor("http://127.0.0.1:1")

	_, err := executor.Execute(t.Context(), map[string]any{"message": "x"}, log.WithModule("test"))
	require.Error(t, err)
	assert.True(t, protocol.IsTransient(err))
}

func TestExecutor_Execute_NoEndpoint(t *testing.T) {
	executor := NewExecutor("")

	_, err := executor.Execute(t.Context(), map[string]any{"message": "x"}, log.WithModule("test"))
	require.Error(t, err)
	assert.True(t, protocol.IsPermanent(err))
}

func TestExecutor_Execute_FallsBackToDescription(t *testing.T) {
	var received string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(body)
		received = string(body)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	executor := NewExecutor(server.URL)

	_, err := executor.Execute(t.Context(), map[string]any{
		"description": "publish the changelog",
	}, log.WithModule("test"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"text": "publish the changelog"}`, received)
}

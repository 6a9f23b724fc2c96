// Package socialpost publishes a message to a webhook-style endpoint.
package socialpost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukex/factotum/pkg/protocol"
)

// Executor posts one message per invocation to the configured endpoint.
// 5xx and transport failures are transient; 4xx responses are permanent
// because resending the same request cannot change the outcome.
type Executor struct {
	client   *http.Client
	endpoint string
}

func NewExecutor(endpoint string) *Executor {
	return &Executor{
		client:   &http.Client{},
		endpoint: endpoint,
	}
}

func (e *Executor) Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (*protocol.ExecutionResult, error) {
	message, _ := payload["message"].(string)
	if message == "" {
		message, _ = payload["description"].(string)
	}

	endpoint := e.endpoint
	if override, ok := payload["endpoint"].(string); ok && override != "" {
		endpoint = override
	}

	if endpoint == "" {
		return nil, protocol.MarkPermanent(fmt.Errorf("no endpoint configured"))
	}

	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return nil, protocol.MarkPermanent(fmt.Errorf("failed to encode post body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, protocol.MarkPermanent(fmt.Errorf("failed to build post request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, protocol.MarkTransient(fmt.Errorf("post request failed: %w", err))
	}
	defer resp.Body.Close()

	responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, protocol.MarkTransient(
			fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, responseBody))
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, protocol.MarkPermanent(
			fmt.Errorf("endpoint rejected post with status %d: %s", resp.StatusCode, responseBody))
	}

	logger.Info("Published post", "endpoint", endpoint, "status", resp.StatusCode)

	return &protocol.ExecutionResult{
		Reference: fmt.Sprintf("%s#%d", endpoint, resp.StatusCode),
		Details: map[string]any{
			"status_code": resp.StatusCode,
		},
	}, nil
}

package intake

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/factotum/pkg/models"
)

func TestParseDocument(t *testing.T) {
	raw := `type: email
status: new
priority: high
created: 2025-06-01T09:00:00Z

Send the invoice to the client.
Include the May line items.
`

	doc, err := ParseDocument(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "email", doc.Type)
	assert.Equal(t, "new", doc.Status)
	assert.Equal(t, "high", doc.Priority)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), doc.Created)
	assert.Equal(t, "Send the invoice to the client.\nInclude the May line items.", doc.Body)
}

func TestParseDocument_MissingType(t *testing.T) {
	raw := "status: new\n\nbody text\n"

	_, err := ParseDocument(strings.NewReader(raw))
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestParseDocument_NoHeader(t *testing.T) {
	_, err := ParseDocument(strings.NewReader(""))
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestParseDocument_HeaderWithoutColon(t *testing.T) {
	raw := "type email\n\nbody\n"

	_, err := ParseDocument(strings.NewReader(raw))
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestDocument_RoundTrip(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader("type: note\npriority: low\n\nwrite this down\n"))
	require.NoError(t, err)

	item := doc.ToWorkItem()
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, models.WorkItemStatusNew, item.Status)
	assert.Equal(t, "note", item.Type)
	assert.Equal(t, "low", item.Priority)
	assert.Equal(t, "write this down", item.Payload["description"])

	rendered, err := RenderDocument(item)
	require.NoError(t, err)

	parsed, err := ParseDocument(strings.NewReader(rendered))
	require.NoError(t, err)

	assert.Equal(t, doc.Type, parsed.Type)
	assert.Equal(t, doc.Priority, parsed.Priority)
	assert.Equal(t, doc.Body, parsed.Body)
	assert.Equal(t, string(models.WorkItemStatusNew), parsed.Status)
}

func TestRenderDocument_PendingApproval(t *testing.T) {
	deadline := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	item := &models.WorkItem{
		ID:     "wi-1",
		Type:   "email",
		Status: models.WorkItemStatusPendingApproval,
		Plan: []models.Step{
			{Index: 1, Capability: "email", RequiresApproval: true},
			{Index: 2, Capability: "note"},
		},
		Payload:          map[string]any{"description": "send the invoice"},
		DecisionDeadline: &deadline,
	}

	out, err := RenderDocument(item)
	require.NoError(t, err)

	assert.Contains(t, out, "type: approval_request")
	assert.Contains(t, out, "work_item: wi-1")
	assert.Contains(t, out, "capability: email")
	assert.NotContains(t, out, "note", "only approval-gated capabilities are listed")
	assert.Contains(t, out, "deadline: 2025-06-02T09:00:00Z")
	assert.Contains(t, out, "send the invoice")
}

func TestRenderDocument_Planned(t *testing.T) {
	item := &models.WorkItem{
		ID:     "wi-2",
		Type:   "email",
		Status: models.WorkItemStatusPlanned,
		Plan: []models.Step{
			{Index: 1, Capability: "email", RequiresApproval: true},
		},
		Payload: map[string]any{"description": "send the invoice"},
	}

	out, err := RenderDocument(item)
	require.NoError(t, err)

	assert.Contains(t, out, "type: plan")
	assert.Contains(t, out, "task_type: email")
	assert.Contains(t, out, "1. [email] (approval required)")
	assert.Contains(t, out, "send the invoice")
}

func TestFolderView_Project(t *testing.T) {
	view, err := NewFolderView(t.TempDir())
	require.NoError(t, err)

	item := &models.WorkItem{
		ID:     "wi-1",
		Type:   "email",
		Status: models.WorkItemStatusPendingApproval,
		Payload: map[string]any{
			"description": "send it",
		},
	}

	require.NoError(t, view.Project(item))
	assert.Equal(t, FolderPendingApproval, view.Locate("wi-1"))

	// Status change moves the projection, leaving no stale copy behind.
	item.Status = models.WorkItemStatusApproved
	require.NoError(t, view.Project(item))
	assert.Equal(t, FolderApproved, view.Locate("wi-1"))
}

func TestFolderView_LocateMissing(t *testing.T) {
	view, err := NewFolderView(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, view.Locate("ghost"))
}

package file

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/persistence"
)

func TestNewPersistence(t *testing.T) {
	p := NewPersistence("file:///tmp/factotum-test")
	assert.Equal(t, "/tmp/factotum-test", p.root)

	p = NewPersistence("/tmp/factotum-test")
	assert.Equal(t, "/tmp/factotum-test", p.root)
}

func TestWorkItemRepository_SaveAndGet(t *testing.T) {
	testDir := t.TempDir()
	p := NewPersistence(testDir)

	item := &models.WorkItem{
		ID:     "wi-1",
		Type:   "email",
		Status: models.WorkItemStatusNew,
		Payload: map[string]any{
			"description": "send the invoice",
		},
	}

	require.NoError(t, p.WorkItems().Save(t.Context(), item))
	assert.FileExists(t, filepath.Join(testDir, "items", "wi-1.json"))
	assert.False(t, item.CreatedAt.IsZero())
	assert.False(t, item.UpdatedAt.IsZero())

	loaded, err := p.WorkItems().GetByID(t.Context(), "wi-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, item.ID, loaded.ID)
	assert.Equal(t, item.Status, loaded.Status)
	assert.Equal(t, "send the invoice", loaded.Payload["description"])
}

func TestWorkItemRepository_GetByID_Missing(t *testing.T) {
	p := NewPersistence(t.TempDir())

	loaded, err := p.WorkItems().GetByID(t.Context(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestWorkItemRepository_ListByStatus(t *testing.T) {
	p := NewPersistence(t.TempDir())

	for _, spec := range []struct {
		id     string
		status models.WorkItemStatus
	}{
		{"wi-1", models.WorkItemStatusPendingApproval},
		{"wi-2", models.WorkItemStatusPendingApproval},
		{"wi-3", models.WorkItemStatusDone},
	} {
		item := &models.WorkItem{ID: spec.id, Type: "note", Status: spec.status}
		require.NoError(t, p.WorkItems().Save(t.Context(), item))
	}

	pending, err := p.WorkItems().ListByStatus(t.Context(), models.WorkItemStatusPendingApproval)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	all, err := p.WorkItems().ListAll(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestWorkItemRepository_CompareAndSwapStatus(t *testing.T) {
	p := NewPersistence(t.TempDir())

	item := &models.WorkItem{ID: "wi-1", Type: "email", Status: models.WorkItemStatusPendingApproval}
	require.NoError(t, p.WorkItems().Save(t.Context(), item))

	item.Status = models.WorkItemStatusApproved
	require.NoError(t, p.WorkItems().CompareAndSwapStatus(t.Context(), item, models.WorkItemStatusPendingApproval))

	loaded, err := p.WorkItems().GetByID(t.Context(), "wi-1")
	require.NoError(t, err)
	assert.Equal(t, models.WorkItemStatusApproved, loaded.Status)
}

func TestWorkItemRepository_CompareAndSwapStatus_Conflict(t *testing.T) {
	p := NewPersistence(t.TempDir())

	item := &models.WorkItem{ID: "wi-1", Type: "email", Status: models.WorkItemStatusPendingApproval}
	require.NoError(t, p.WorkItems().Save(t.Context(), item))

	// A competing writer already moved the item.
	competing := *item
	competing.Status = models.WorkItemStatusRejected
	require.NoError(t, p.WorkItems().CompareAndSwapStatus(t.Context(), &competing, models.WorkItemStatusPendingApproval))

	late := *item
	late.Status = models.WorkItemStatusApproved

	err := p.WorkItems().CompareAndSwapStatus(t.Context(), &late, models.WorkItemStatusPendingApproval)
	require.Error(t, err)
	assert.True(t, persistence.IsStatusConflict(err))

	// The stored item keeps the winning decision.
	loaded, err := p.WorkItems().GetByID(t.Context(), "wi-1")
	require.NoError(t, err)
	assert.Equal(t, models.WorkItemStatusRejected, loaded.Status)
}

func TestWorkItemRepository_CompareAndSwapStatus_Missing(t *testing.T) {
	p := NewPersistence(t.TempDir())

	item := &models.WorkItem{ID: "ghost", Status: models.WorkItemStatusApproved}

	err := p.WorkItems().CompareAndSwapStatus(t.Context(), item, models.WorkItemStatusPendingApproval)
	require.Error(t, err)
	assert.True(t, persistence.IsWorkItemNotFound(err))
}

func TestWorkItemRepository_Delete(t *testing.T) {
	p := NewPersistence(t.TempDir())

	item := &models.WorkItem{ID: "wi-1", Type: "note", Status: models.WorkItemStatusNew}
	require.NoError(t, p.WorkItems().Save(t.Context(), item))
	require.NoError(t, p.WorkItems().Delete(t.Context(), "wi-1"))

	loaded, err := p.WorkItems().GetByID(t.Context(), "wi-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, p.WorkItems().Delete(t.Context(), "wi-1"), "deleting a missing item is a no-op")
}

func TestApprovalRepository_AppendAndList(t *testing.T) {
	p := NewPersistence(t.TempDir())

	first := &models.ApprovalRecord{WorkItemID: "wi-1", Decision: models.DecisionApproved, Actor: "human"}
	second := &models.ApprovalRecord{WorkItemID: "wi-1", Decision: models.DecisionExpired, Actor: models.ActorSystem}

	require.NoError(t, p.Approvals().Append(t.Context(), first))
	require.NoError(t, p.Approvals().Append(t.Context(), second))

	records, err := p.Approvals().ListByWorkItem(t.Context(), "wi-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.DecisionApproved, records[0].Decision)
	assert.Equal(t, models.DecisionExpired, records[1].Decision)

	empty, err := p.Approvals().ListByWorkItem(t.Context(), "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

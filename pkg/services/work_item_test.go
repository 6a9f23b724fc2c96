package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/factotum/pkg/lifecycle"
	"github.com/dukex/factotum/pkg/log"
	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/persistence"
	"github.com/dukex/factotum/pkg/persistence/file"
	"github.com/dukex/factotum/pkg/planner"
	"github.com/dukex/factotum/pkg/registry"
)

func newTestService(t *testing.T) (*WorkItem, persistence.Persistence) {
	t.Helper()

	logger := log.WithModule("test")
	store := file.NewPersistence(t.TempDir())
	reg := registry.NewRegistry(logger)
	generator := planner.NewGenerator(logger, nil, planner.DefaultRules())
	manager := lifecycle.NewManager(logger, store, reg, generator, nil, lifecycle.DefaultPolicy())

	return NewWorkItem(store, manager), store
}

func TestWorkItem_Create(t *testing.T) {
	service, _ := newTestService(t)

	item, err := service.Create(t.Context(), "email", "high", "send the invoice", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, models.WorkItemStatusNew, item.Status)
	assert.Equal(t, "send the invoice", item.Payload["description"])
	assert.Equal(t, "high", item.Priority)
}

func TestWorkItem_Create_EmptyType(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Create(t.Context(), "", "", "whatever", nil)
	require.ErrorIs(t, err, ErrEmptyType)
	assert.True(t, IsValidationError(err))
}

func TestWorkItem_List(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Create(t.Context(), "email", "", "a", nil)
	require.NoError(t, err)
	_, err = service.Create(t.Context(), "note", "", "b", nil)
	require.NoError(t, err)

	items, err := service.List(t.Context(), "")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = service.List(t.Context(), "new")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = service.List(t.Context(), "done")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWorkItem_List_InvalidStatus(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.List(t.Context(), "bogus")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestWorkItem_FetchByID_Missing(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.FetchByID(t.Context(), "ghost")
	require.ErrorIs(t, err, persistence.ErrWorkItemNotFound)
}

func TestWorkItem_Decide(t *testing.T) {
	service, store := newTestService(t)

	item := &models.WorkItem{
		ID:     "wi-1",
		Type:   "email",
		Status: models.WorkItemStatusPendingApproval,
		Plan:   []models.Step{{Index: 0, Capability: "email", RequiresApproval: true}},
	}
	require.NoError(t, store.WorkItems().Save(t.Context(), item))

	decided, err := service.Decide(t.Context(), "wi-1", models.DecisionApproved, "alex")
	require.NoError(t, err)
	assert.Equal(t, models.WorkItemStatusApproved, decided.Status)

	records, err := service.Approvals(t.Context(), "wi-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alex", records[0].Actor)
}

func TestWorkItem_Decide_Validation(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Decide(t.Context(), "wi-1", models.DecisionApproved, "")
	require.ErrorIs(t, err, ErrEmptyActor)

	_, err = service.Decide(t.Context(), "wi-1", models.Decision("maybe"), "alex")
	require.ErrorIs(t, err, ErrInvalidDecision)
}

func TestWorkItem_Decide_ConflictClassification(t *testing.T) {
	service, store := newTestService(t)

	item := &models.WorkItem{ID: "wi-1", Type: "email", Status: models.WorkItemStatusDone}
	require.NoError(t, store.WorkItems().Save(t.Context(), item))

	_, err := service.Decide(t.Context(), "wi-1", models.DecisionApproved, "alex")
	require.Error(t, err)
	assert.True(t, IsConflictError(err), "decisions against the state machine are conflicts")
}

func TestWorkItem_HealthCheck(t *testing.T) {
	service, _ := newTestService(t)

	message, ok := service.HealthCheck(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "ok", message)
}

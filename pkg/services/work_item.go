package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukex/factotum/pkg/lifecycle"
	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/persistence"
)

// WorkItem is the application service used by the API and CLI surfaces.
// All status mutation goes through the lifecycle manager; this layer adds
// input validation only.
type WorkItem struct {
	persistence persistence.Persistence
	manager     *lifecycle.Manager
}

func NewWorkItem(persistence persistence.Persistence, manager *lifecycle.Manager) *WorkItem {
	return &WorkItem{
		persistence: persistence,
		manager:     manager,
	}
}

// List returns work items, optionally filtered by status.
func (s *WorkItem) List(ctx context.Context, status string) ([]*models.WorkItem, error) {
	if status == "" {
		return s.persistence.WorkItems().ListAll(ctx)
	}

	parsed := models.WorkItemStatus(status)
	if !knownStatus(parsed) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	return s.persistence.WorkItems().ListByStatus(ctx, parsed)
}

// FetchByID returns one work item or ErrWorkItemNotFound.
func (s *WorkItem) FetchByID(ctx context.Context, id string) (*models.WorkItem, error) {
	item, err := s.persistence.WorkItems().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if item == nil {
		return nil, persistence.NewWorkItemError("FetchByID", id, persistence.ErrWorkItemNotFound)
	}

	return item, nil
}

// Create ingests a new work item in status new.
func (s *WorkItem) Create(ctx context.Context, itemType, priority, description string, payload map[string]any) (*models.WorkItem, error) {
	if itemType == "" {
		return nil, ErrEmptyType
	}

	if payload == nil {
		payload = make(map[string]any)
	}

	if description != "" {
		payload["description"] = description
	}

	now := time.Now().UTC()

	item := &models.WorkItem{
		ID:        uuid.New().String(),
		Type:      itemType,
		Status:    models.WorkItemStatusNew,
		Priority:  priority,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.persistence.WorkItems().Save(ctx, item)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// Decide records a human decision through the lifecycle manager.
func (s *WorkItem) Decide(ctx context.Context, id string, decision models.Decision, actor string) (*models.WorkItem, error) {
	if actor == "" {
		return nil, ErrEmptyActor
	}

	if decision != models.DecisionApproved && decision != models.DecisionRejected {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	return s.manager.RecordDecision(ctx, id, decision, actor)
}

// Approvals returns the decision audit trail for a work item.
func (s *WorkItem) Approvals(ctx context.Context, id string) ([]*models.ApprovalRecord, error) {
	_, err := s.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.persistence.Approvals().ListByWorkItem(ctx, id)
}

// HealthCheck reports backend reachability.
func (s *WorkItem) HealthCheck(ctx context.Context) (string, bool) {
	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return err.Error(), false
	}

	return "ok", true
}

func knownStatus(status models.WorkItemStatus) bool {
	switch status {
	case models.WorkItemStatusNew,
		models.WorkItemStatusPlanned,
		models.WorkItemStatusPendingApproval,
		models.WorkItemStatusApproved,
		models.WorkItemStatusDispatched,
		models.WorkItemStatusRejected,
		models.WorkItemStatusExpired,
		models.WorkItemStatusDone,
		models.WorkItemStatusFailed:
		return true
	default:
		return false
	}
}

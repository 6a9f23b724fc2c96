// Package persistence provides the data storage abstraction layer for work items and approvals.
package persistence

import (
	"context"

	"github.com/dukex/factotum/pkg/models"
)

// WorkItemRepository stores work items. GetByID returns (nil, nil) when
// the item does not exist, mirroring a cache-miss read.
type WorkItemRepository interface {
	GetByID(ctx context.Context, id string) (*models.WorkItem, error)
	Save(ctx context.Context, item *models.WorkItem) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*models.WorkItem, error)
	ListByStatus(ctx context.Context, status models.WorkItemStatus) ([]*models.WorkItem, error)

	// CompareAndSwapStatus persists the item only if its stored status
	// still equals from, guarding against lost updates between
	// overlapping invocations. Returns ErrStatusConflict otherwise.
	CompareAndSwapStatus(ctx context.Context, item *models.WorkItem, from models.WorkItemStatus) error
}

// ApprovalRepository appends and reads the immutable decision audit trail.
type ApprovalRepository interface {
	Append(ctx context.Context, record *models.ApprovalRecord) error
	ListByWorkItem(ctx context.Context, workItemID string) ([]*models.ApprovalRecord, error)
}

type Persistence interface {
	WorkItems() WorkItemRepository
	Approvals() ApprovalRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

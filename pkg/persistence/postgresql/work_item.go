package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/persistence"
)

// WorkItemRepository handles work-item-related database operations.
type WorkItemRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkItemRepository creates a new work item repository.
func NewWorkItemRepository(db *sql.DB, logger *slog.Logger) *WorkItemRepository {
	return &WorkItemRepository{db: db, logger: logger}
}

const workItemColumns = `
	id
  , type
  , status
  , priority
  , payload
  , plan
  , attempts
  , created_at
  , updated_at
  , decision_deadline
`

func (r *WorkItemRepository) GetByID(ctx context.Context, id string) (*models.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	item, err := scanWorkItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewWorkItemError("GetByID", id, err)
	}

	return item, nil
}

// Save inserts or updates a work item.
func (r *WorkItemRepository) Save(ctx context.Context, item *models.WorkItem) error {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}

	item.UpdatedAt = now

	payload, plan, err := marshalWorkItemJSON(item)
	if err != nil {
		return persistence.NewWorkItemError("Save", item.ID, err)
	}

	query := `
		INSERT INTO work_items (id, type, status, priority, payload, plan, attempts, created_at, updated_at, decision_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			payload = EXCLUDED.payload,
			plan = EXCLUDED.plan,
			attempts = EXCLUDED.attempts,
			updated_at = EXCLUDED.updated_at,
			decision_deadline = EXCLUDED.decision_deadline
	`

	_, err = r.db.ExecContext(ctx, query,
		item.ID, item.Type, string(item.Status), item.Priority,
		payload, plan, item.Attempts, item.CreatedAt, item.UpdatedAt, item.DecisionDeadline,
	)
	if err != nil {
		return persistence.NewWorkItemError("Save", item.ID, err)
	}

	return nil
}

// Delete removes a work item. Deleting a missing item is a no-op.
func (r *WorkItemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM work_items WHERE id = $1`, id)
	if err != nil {
		return persistence.NewWorkItemError("Delete", id, err)
	}

	return nil
}

func (r *WorkItemRepository) ListAll(ctx context.Context) ([]*models.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items ORDER BY created_at ASC`

	return r.queryWorkItems(ctx, query)
}

func (r *WorkItemRepository) ListByStatus(ctx context.Context, status models.WorkItemStatus) ([]*models.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE status = $1 ORDER BY created_at ASC`

	return r.queryWorkItems(ctx, query, string(status))
}

// CompareAndSwapStatus updates the row only when the stored status still
// matches from; zero rows affected means another writer moved the item.
func (r *WorkItemRepository) CompareAndSwapStatus(ctx context.Context, item *models.WorkItem, from models.WorkItemStatus) error {
	item.UpdatedAt = time.Now().UTC()

	payload, plan, err := marshalWorkItemJSON(item)
	if err != nil {
		return persistence.NewWorkItemError("CompareAndSwapStatus", item.ID, err)
	}

	query := `
		UPDATE work_items SET
			status = $2,
			priority = $3,
			payload = $4,
			plan = $5,
			attempts = $6,
			updated_at = $7,
			decision_deadline = $8
		WHERE id = $1 AND status = $9
	`

	result, err := r.db.ExecContext(ctx, query,
		item.ID, string(item.Status), item.Priority, payload, plan,
		item.Attempts, item.UpdatedAt, item.DecisionDeadline, string(from),
	)
	if err != nil {
		return persistence.NewWorkItemError("CompareAndSwapStatus", item.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkItemError("CompareAndSwapStatus", item.ID, err)
	}

	if affected == 0 {
		stored, err := r.GetByID(ctx, item.ID)
		if err != nil {
			return err
		}

		if stored == nil {
			return persistence.NewWorkItemError("CompareAndSwapStatus", item.ID, persistence.ErrWorkItemNotFound)
		}

		return persistence.NewWorkItemError("CompareAndSwapStatus", item.ID, persistence.ErrStatusConflict)
	}

	return nil
}

func (r *WorkItemRepository) queryWorkItems(ctx context.Context, query string, args ...any) ([]*models.WorkItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.Error("failed to close rows", "error", err)
		}
	}()

	items := make([]*models.WorkItem, 0)

	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}

		items = append(items, item)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating work items: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkItem(row rowScanner) (*models.WorkItem, error) {
	var (
		item     models.WorkItem
		status   string
		payload  []byte
		plan     []byte
		deadline sql.NullTime
	)

	err := row.Scan(
		&item.ID, &item.Type, &status, &item.Priority,
		&payload, &plan, &item.Attempts,
		&item.CreatedAt, &item.UpdatedAt, &deadline,
	)
	if err != nil {
		return nil, err
	}

	item.Status = models.WorkItemStatus(status)

	if deadline.Valid {
		t := deadline.Time.UTC()
		item.DecisionDeadline = &t
	}

	err = json.Unmarshal(payload, &item.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	err = json.Unmarshal(plan, &item.Plan)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}

	return &item, nil
}

func marshalWorkItemJSON(item *models.WorkItem) (payload, plan []byte, err error) {
	if item.Payload == nil {
		item.Payload = make(map[string]any)
	}

	payload, err = json.Marshal(item.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	if item.Plan == nil {
		item.Plan = make([]models.Step, 0)
	}

	plan, err = json.Marshal(item.Plan)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal plan: %w", err)
	}

	return payload, plan, nil
}

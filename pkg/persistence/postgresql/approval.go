package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukex/factotum/pkg/models"
)

// ApprovalRepository handles the append-only decision audit trail.
type ApprovalRepository struct {
	db *sql.DB
}

// NewApprovalRepository creates a new approval repository.
func NewApprovalRepository(db *sql.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// Append writes one approval record.
func (r *ApprovalRepository) Append(ctx context.Context, record *models.ApprovalRecord) error {
	if record.DecidedAt.IsZero() {
		record.DecidedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO approval_records (work_item_id, decision, actor, decided_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.WorkItemID, string(record.Decision), record.Actor, record.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append approval record for %s: %w", record.WorkItemID, err)
	}

	return nil
}

// ListByWorkItem returns the decision history for one work item in append order.
func (r *ApprovalRepository) ListByWorkItem(ctx context.Context, workItemID string) ([]*models.ApprovalRecord, error) {
	query := `
		SELECT work_item_id, decision, actor, decided_at
		FROM approval_records
		WHERE work_item_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval records for %s: %w", workItemID, err)
	}

	defer func() {
		_ = rows.Close()
	}()

	records := make([]*models.ApprovalRecord, 0)

	for rows.Next() {
		var (
			record   models.ApprovalRecord
			decision string
		)

		err = rows.Scan(&record.WorkItemID, &decision, &record.Actor, &record.DecidedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval record: %w", err)
		}

		record.Decision = models.Decision(decision)
		records = append(records, &record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating approval records: %w", err)
	}

	return records, nil
}

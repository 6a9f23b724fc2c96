package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dukex/factotum/pkg/models"
)

const approvalKeyPrefix = "factotum:approvals:"

// ApprovalRepository stores approval records as an append-only list per work item.
type ApprovalRepository struct {
	client *redis.Client
}

// NewApprovalRepository creates a new approval repository.
func NewApprovalRepository(client *redis.Client) *ApprovalRepository {
	return &ApprovalRepository{client: client}
}

func (r *ApprovalRepository) Append(ctx context.Context, record *models.ApprovalRecord) error {
	if record.DecidedAt.IsZero() {
		record.DecidedAt = time.Now().UTC()
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal approval record for %s: %w", record.WorkItemID, err)
	}

	err = r.client.RPush(ctx, approvalKeyPrefix+record.WorkItemID, body).Err()
	if err != nil {
		return fmt.Errorf("failed to append approval record for %s: %w", record.WorkItemID, err)
	}

	return nil
}

func (r *ApprovalRepository) ListByWorkItem(ctx context.Context, workItemID string) ([]*models.ApprovalRecord, error) {
	values, err := r.client.LRange(ctx, approvalKeyPrefix+workItemID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read approval records for %s: %w", workItemID, err)
	}

	records := make([]*models.ApprovalRecord, 0, len(values))

	for _, value := range values {
		var record models.ApprovalRecord

		err = json.Unmarshal([]byte(value), &record)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal approval record for %s: %w", workItemID, err)
		}

		records = append(records, &record)
	}

	return records, nil
}

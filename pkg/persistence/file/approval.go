package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/dukex/factotum/pkg/models"
)

// ApprovalRepository stores approval records as append-only JSON lines,
// one file per work item under <root>/approvals.
type ApprovalRepository struct {
	root string
}

// NewApprovalRepository creates a new approval repository.
func NewApprovalRepository(root string) *ApprovalRepository {
	return &ApprovalRepository{root: root}
}

// Append writes one approval record. Records are never rewritten.
func (ar *ApprovalRepository) Append(_ context.Context, record *models.ApprovalRecord) error {
	err := os.MkdirAll(path.Join(ar.root, "approvals"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create approvals directory: %w", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal approval record for %s: %w", record.WorkItemID, err)
	}

	filePath := path.Join(ar.root, "approvals", record.WorkItemID+".jsonl")

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open approval log for %s: %w", record.WorkItemID, err)
	}

	defer func() {
		_ = f.Close()
	}()

	_, err = f.Write(append(data, '\n'))
	if err != nil {
		return fmt.Errorf("failed to append approval record for %s: %w", record.WorkItemID, err)
	}

	return nil
}

// ListByWorkItem returns the decision history for one work item in
// append order. A missing file means no decisions yet.
func (ar *ApprovalRepository) ListByWorkItem(_ context.Context, workItemID string) ([]*models.ApprovalRecord, error) {
	filePath := path.Join(ar.root, "approvals", workItemID+".jsonl")

	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.ApprovalRecord{}, nil
		}

		return nil, fmt.Errorf("failed to open approval log for %s: %w", workItemID, err)
	}

	defer func() {
		_ = f.Close()
	}()

	records := make([]*models.ApprovalRecord, 0)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record models.ApprovalRecord

		err = json.Unmarshal(line, &record)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal approval record for %s: %w", workItemID, err)
		}

		records = append(records, &record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read approval log for %s: %w", workItemID, err)
	}

	return records, nil
}

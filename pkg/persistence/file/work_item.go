package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/persistence"
)

// WorkItemRepository handles work-item-related file operations.
// One JSON document per item under <root>/items.
type WorkItemRepository struct {
	root string

	// mu serializes read-modify-write cycles so CompareAndSwapStatus is
	// atomic within a process. Cross-process overlap is guarded by the
	// status verification itself.
	mu sync.Mutex
}

// NewWorkItemRepository creates a new work item repository.
func NewWorkItemRepository(root string) *WorkItemRepository {
	return &WorkItemRepository{root: root}
}

// GetByID retrieves a work item by its ID from the file system.
func (wr *WorkItemRepository) GetByID(_ context.Context, id string) (*models.WorkItem, error) {
	filePath := filepath.Clean(path.Join(wr.root, "items", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, persistence.NewWorkItemError("GetByID", id, err)
	}

	var item models.WorkItem

	err = json.Unmarshal(body, &item)
	if err != nil {
		return nil, persistence.NewWorkItemError("GetByID", id, fmt.Errorf("failed to unmarshal: %w", err))
	}

	return &item, nil
}

// Save writes a work item to the file system.
func (wr *WorkItemRepository) Save(_ context.Context, item *models.WorkItem) error {
	err := os.MkdirAll(path.Join(wr.root, "items"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create items directory: %w", err)
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}

	item.UpdatedAt = now

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return persistence.NewWorkItemError("Save", item.ID, err)
	}

	filePath := path.Join(wr.root, "items", item.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// Delete removes a work item by its ID. Deleting a missing item is a no-op.
func (wr *WorkItemRepository) Delete(_ context.Context, id string) error {
	filePath := path.Join(wr.root, "items", id+".json")

	err := os.Remove(filePath)
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return persistence.NewWorkItemError("Delete", id, err)
	}

	return nil
}

// ListAll returns every stored work item, oldest first.
func (wr *WorkItemRepository) ListAll(ctx context.Context) ([]*models.WorkItem, error) {
	root := os.DirFS(path.Join(wr.root, "items"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list work item files: %w", err)
	}

	items := make([]*models.WorkItem, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-5] // Remove .json extension

		item, err := wr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if item != nil {
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	return items, nil
}

// ListByStatus returns all work items currently in the given status.
func (wr *WorkItemRepository) ListByStatus(ctx context.Context, status models.WorkItemStatus) ([]*models.WorkItem, error) {
	all, err := wr.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.WorkItem, 0)

	for _, item := range all {
		if item.Status == status {
			filtered = append(filtered, item)
		}
	}

	return filtered, nil
}

// CompareAndSwapStatus persists item only if the stored copy still holds
// the from status. This is the write-then-verify guard against two
// overlapping invocations moving the same item.
func (wr *WorkItemRepository) CompareAndSwapStatus(ctx context.Context, item *models.WorkItem, from models.WorkItemStatus) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	stored, err := wr.GetByID(ctx, item.ID)
	if err != nil {
		return err
	}

	if stored == nil {
		return persistence.NewWorkItemError("CompareAndSwapStatus", item.ID, persistence.ErrWorkItemNotFound)
	}

	if stored.Status != from {
		return persistence.NewWorkItemError("CompareAndSwapStatus", item.ID, persistence.ErrStatusConflict)
	}

	return wr.Save(ctx, item)
}

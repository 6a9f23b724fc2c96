package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/persistence"
)

const (
	itemKeyPrefix = "factotum:item:"
	itemIndexKey  = "factotum:items"
)

// WorkItemRepository stores work items as JSON values, indexed by a set of ids.
type WorkItemRepository struct {
	client *redis.Client
}

// NewWorkItemRepository creates a new work item repository.
func NewWorkItemRepository(client *redis.Client) *WorkItemRepository {
	return &WorkItemRepository{client: client}
}

func (r *WorkItemRepository) GetByID(ctx context.Context, id string) (*models.WorkItem, error) {
	body, err := r.client.Get(ctx, itemKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, persistence.NewWorkItemError("GetByID", id, err)
	}

	var item models.WorkItem

	err = json.Unmarshal(body, &item)
	if err != nil {
		return nil, persistence.NewWorkItemError("GetByID", id, err)
	}

	return &item, nil
}

func (r *WorkItemRepository) Save(ctx context.Context, item *models.WorkItem) error {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}

	item.UpdatedAt = now

	body, err := json.Marshal(item)
	if err != nil {
		return persistence.NewWorkItemError("Save", item.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, itemKeyPrefix+item.ID, body, 0)
	pipe.SAdd(ctx, itemIndexKey, item.ID)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return persistence.NewWorkItemError("Save", item.ID, err)
	}

	return nil
}

func (r *WorkItemRepository) Delete(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, itemKeyPrefix+id)
	pipe.SRem(ctx, itemIndexKey, id)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return persistence.NewWorkItemError("Delete", id, err)
	}

	return nil
}

func (r *WorkItemRepository) ListAll(ctx context.Context) ([]*models.WorkItem, error) {
	ids, err := r.client.SMembers(ctx, itemIndexKey).Result()
	if err != nil {
		return nil, persistence.NewWorkItemError("ListAll", "", err)
	}

	items := make([]*models.WorkItem, 0, len(ids))

	for _, id := range ids {
		item, err := r.GetByID(ctx, id)
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

func (r *WorkItemRepository) ListByStatus(ctx context.Context, status models.WorkItemStatus) ([]*models.WorkItem, error) {
	all, err := r.ListAll(ctx)
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

// CompareAndSwapStatus runs an optimistic WATCH transaction so the write
// aborts when another writer touches the key between read and write.
func (r *WorkItemRepository) CompareAndSwapStatus(ctx context.Context, item *models.WorkItem, from models.WorkItemStatus) error {
	key := itemKeyPrefix + item.ID

	txn := func(tx *redis.Tx) error {
		body, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return persistence.ErrWorkItemNotFound
			}

			return err
		}

		var stored models.WorkItem
		if err := json.Unmarshal(body, &stored); err != nil {
			return err
		}

		if stored.Status != from {
			return persistence.ErrStatusConflict
		}

		item.UpdatedAt = time.Now().UTC()

		updated, err := json.Marshal(item)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)

			return nil
		})

		return err
	}

	err := r.client.Watch(ctx, txn, key)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			err = persistence.ErrStatusConflict
		}

		return persistence.NewWorkItemError("CompareAndSwapStatus", item.ID, err)
	}

	return nil
}

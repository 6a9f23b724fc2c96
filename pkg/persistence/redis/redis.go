// Package redis provides Redis persistence for work items and approvals.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dukex/factotum/pkg/persistence"
)

// Persistence implements the persistence layer on top of Redis.
type Persistence struct {
	client       *redis.Client
	workItemRepo *WorkItemRepository
	approvalRepo *ApprovalRepository
}

// NewPersistence creates a Redis persistence layer from a redis:// URL.
func NewPersistence(ctx context.Context, redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{
		client:       client,
		workItemRepo: NewWorkItemRepository(client),
		approvalRepo: NewApprovalRepository(client),
	}, nil
}

// Close closes the Redis connection.
func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

// HealthCheck verifies the Redis connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) WorkItems() persistence.WorkItemRepository {
	return p.workItemRepo
}

func (p *Persistence) Approvals() persistence.ApprovalRepository {
	return p.approvalRepo
}

// Package lifecycle drives work items through planning, approval and execution.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/factotum/pkg/eventbus"
	"github.com/dukex/factotum/pkg/events"
	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/persistence"
	"github.com/dukex/factotum/pkg/planner"
	"github.com/dukex/factotum/pkg/protocol"
	"github.com/dukex/factotum/pkg/registry"
)

// ErrDecisionInvalid indicates a decision value outside approved/rejected.
var ErrDecisionInvalid = errors.New("decision must be approved or rejected")

// Manager is the single writer of work item status. Every status change
// goes through a compare-and-swap against the status the manager read, so
// overlapping invocations lose cleanly instead of overwriting each other.
type Manager struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	generator   *planner.Generator
	publisher   eventbus.EventPublisher
	policy      Policy

	// now is swapped in tests to control deadlines.
	now func() time.Time
}

func NewManager(
	logger *slog.Logger,
	persistence persistence.Persistence,
	reg *registry.Registry,
	generator *planner.Generator,
	publisher eventbus.EventPublisher,
	policy Policy,
) *Manager {
	return &Manager{
		logger:      logger.With("module", "lifecycle"),
		persistence: persistence,
		registry:    reg,
		generator:   generator,
		publisher:   publisher,
		policy:      policy,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Plan generates and attaches a plan to a new work item. The item type is
// replaced by the classified task type unless it was set explicitly.
func (m *Manager) Plan(ctx context.Context, id string) (*models.WorkItem, error) {
	item, err := m.load(ctx, "Plan", id)
	if err != nil {
		return nil, err
	}

	if item.Status != models.WorkItemStatusNew {
		return nil, persistence.NewWorkItemError("Plan", id, models.ErrInvalidTransition)
	}

	description, _ := item.Payload["description"].(string)

	plan, err := m.generator.GeneratePlan(ctx, item.ID, description)
	if err != nil {
		return nil, persistence.NewWorkItemError("Plan", id, err)
	}

	item.Plan = plan.Steps
	if item.Type == "" || item.Type == "generic" {
		item.Type = plan.TaskType
	}

	err = m.transition(ctx, "Plan", item, models.WorkItemStatusPlanned)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// SubmitForApproval moves a planned item into the approval window and
// stamps its decision deadline. Submitting an already pending item is a
// no-op; the original deadline stands. Items whose plan needs no approval
// are approved immediately with a system decision record.
func (m *Manager) SubmitForApproval(ctx context.Context, id string) (*models.WorkItem, error) {
	item, err := m.load(ctx, "SubmitForApproval", id)
	if err != nil {
		return nil, err
	}

	if item.Status == models.WorkItemStatusPendingApproval {
		m.logger.Debug("Item already pending approval", "work_item_id", id)

		return item, nil
	}

	previousDeadline := item.DecisionDeadline
	deadline := m.now().Add(m.policy.DecisionWindow)
	item.DecisionDeadline = &deadline

	err = m.transition(ctx, "SubmitForApproval", item, models.WorkItemStatusPendingApproval)
	if err != nil {
		item.DecisionDeadline = previousDeadline

		return nil, err
	}

	m.publish(ctx, item.ID, events.ItemSubmitted{
		BaseEvent:        events.NewBaseEvent(events.ItemSubmittedEvent, item.ID),
		ItemType:         item.Type,
		DecisionDeadline: deadline,
	})

	plan := models.Plan{Steps: item.Plan}
	if !plan.RequiresApproval() {
		return m.decide(ctx, item, models.DecisionApproved, models.ActorSystem)
	}

	return item, nil
}

// RecordDecision applies a human decision to a pending item. Decisions on
// items in any other status fail with ErrInvalidTransition; the first
// decision wins and later ones change nothing.
func (m *Manager) RecordDecision(ctx context.Context, id string, decision models.Decision, actor string) (*models.WorkItem, error) {
	if decision != models.DecisionApproved && decision != models.DecisionRejected {
		return nil, fmt.Errorf("%w: %q", ErrDecisionInvalid, decision)
	}

	if actor == "" {
		return nil, fmt.Errorf("%w: empty actor", ErrDecisionInvalid)
	}

	item, err := m.load(ctx, "RecordDecision", id)
	if err != nil {
		return nil, err
	}

	if item.Status != models.WorkItemStatusPendingApproval {
		return nil, persistence.NewWorkItemError("RecordDecision", id, models.ErrInvalidTransition)
	}

	return m.decide(ctx, item, decision, actor)
}

func (m *Manager) decide(ctx context.Context, item *models.WorkItem, decision models.Decision, actor string) (*models.WorkItem, error) {
	target := models.WorkItemStatusApproved
	if decision == models.DecisionRejected {
		target = models.WorkItemStatusRejected
	}

	err := m.transition(ctx, "RecordDecision", item, target)
	if err != nil {
		return nil, err
	}

	record := &models.ApprovalRecord{
		WorkItemID: item.ID,
		Decision:   decision,
		Actor:      actor,
		DecidedAt:  m.now(),
	}

	err = m.persistence.Approvals().Append(ctx, record)
	if err != nil {
		return nil, persistence.NewWorkItemError("RecordDecision", item.ID, err)
	}

	m.logger.Info("Recorded decision",
		"work_item_id", item.ID,
		"decision", decision,
		"actor", actor)

	m.publish(ctx, item.ID, events.ItemDecided{
		BaseEvent: events.NewBaseEvent(events.ItemDecidedEvent, item.ID),
		Decision:  decision,
		Actor:     actor,
	})

	return item, nil
}

// SweepExpired expires every pending item whose decision deadline has
// passed and returns how many it expired. A concurrent decision beats the
// sweeper: the compare-and-swap fails and the item is skipped. Running the
// sweep twice changes nothing the second time.
func (m *Manager) SweepExpired(ctx context.Context) (int, error) {
	pending, err := m.persistence.WorkItems().ListByStatus(ctx, models.WorkItemStatusPendingApproval)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending items: %w", err)
	}

	now := m.now()
	expired := 0

	for _, item := range pending {
		if !item.DeadlinePassed(now) {
			continue
		}

		deadline := *item.DecisionDeadline

		err = m.transition(ctx, "SweepExpired", item, models.WorkItemStatusExpired)
		if err != nil {
			if persistence.IsStatusConflict(err) {
				m.logger.Debug("Item decided during sweep", "work_item_id", item.ID)

				continue
			}

			return expired, err
		}

		record := &models.ApprovalRecord{
			WorkItemID: item.ID,
			Decision:   models.DecisionExpired,
			Actor:      models.ActorSystem,
			DecidedAt:  now,
		}

		err = m.persistence.Approvals().Append(ctx, record)
		if err != nil {
			return expired, persistence.NewWorkItemError("SweepExpired", item.ID, err)
		}

		m.publish(ctx, item.ID, events.ItemExpired{
			BaseEvent:        events.NewBaseEvent(events.ItemExpiredEvent, item.ID),
			DecisionDeadline: deadline,
		})

		expired++
	}

	if expired > 0 {
		m.logger.Info("Expired undecided items", "count", expired)
	}

	return expired, nil
}

// Dispatch executes an approved item's plan. Transient failures are
// retried with exponential backoff until the attempt budget is spent;
// permanent failures and unknown capabilities fail immediately. The item
// never executes more than MaxAttempts times across all invocations.
func (m *Manager) Dispatch(ctx context.Context, id string) (*models.WorkItem, error) {
	item, err := m.load(ctx, "Dispatch", id)
	if err != nil {
		return nil, err
	}

	if item.Status != models.WorkItemStatusApproved {
		return nil, persistence.NewWorkItemError("Dispatch", id, models.ErrInvalidTransition)
	}

	for _, step := range item.Plan {
		if m.registry.IsRegistered(step.Capability) {
			continue
		}

		failErr := fmt.Errorf("%w: %s", registry.ErrUnknownCapability, step.Capability)

		return item, m.fail(ctx, item, failErr, "unknown_capability")
	}

	for {
		if item.Attempts >= m.policy.MaxAttempts {
			budgetErr := fmt.Errorf("attempt budget of %d spent", m.policy.MaxAttempts)

			return item, m.fail(ctx, item, budgetErr, "transient")
		}

		item.Attempts++

		err = m.transition(ctx, "Dispatch", item, models.WorkItemStatusDispatched)
		if err != nil {
			return nil, err
		}

		m.publish(ctx, item.ID, events.ItemDispatched{
			BaseEvent: events.NewBaseEvent(events.ItemDispatchedEvent, item.ID),
			ItemType:  item.Type,
			Attempt:   item.Attempts,
		})

		started := m.now()

		result, execErr := m.executePlan(ctx, item)
		if execErr == nil {
			err = m.transition(ctx, "Dispatch", item, models.WorkItemStatusDone)
			if err != nil {
				return nil, err
			}

			m.publish(ctx, item.ID, events.ItemCompleted{
				BaseEvent:  events.NewBaseEvent(events.ItemCompletedEvent, item.ID),
				ItemType:   item.Type,
				Result:     result,
				DurationMs: m.now().Sub(started).Milliseconds(),
			})

			return item, nil
		}

		if protocol.IsPermanent(execErr) {
			return item, m.fail(ctx, item, execErr, "permanent")
		}

		if item.Attempts >= m.policy.MaxAttempts {
			return item, m.fail(ctx, item, execErr, "transient")
		}

		m.logger.Warn("Execution attempt failed, will retry",
			"work_item_id", item.ID,
			"attempt", item.Attempts,
			"error", execErr)

		err = m.transition(ctx, "Dispatch", item, models.WorkItemStatusApproved)
		if err != nil {
			return nil, err
		}

		err = m.wait(ctx, m.policy.backoffFor(item.Attempts+1))
		if err != nil {
			return item, err
		}
	}
}

// executePlan runs the item's steps in order, each under the execution
// timeout. Already completed steps are skipped on retry.
func (m *Manager) executePlan(ctx context.Context, item *models.WorkItem) (map[string]any, error) {
	results := make(map[string]any)

	for i := range item.Plan {
		step := &item.Plan[i]
		if step.Completed {
			continue
		}

		err := m.registry.ValidatePayload(step.Capability, item.Payload)
		if err != nil {
			return nil, protocol.MarkPermanent(err)
		}

		executor, err := m.registry.CreateExecutor(step.Capability, nil)
		if err != nil {
			return nil, protocol.MarkPermanent(err)
		}

		stepCtx, cancel := context.WithTimeout(ctx, m.policy.ExecutionTimeout)

		result, err := executor.Execute(stepCtx, item.Payload,
			m.logger.With("work_item_id", item.ID, "capability", step.Capability))

		cancel()

		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", step.Index, step.Capability, err)
		}

		step.Completed = true

		if result != nil {
			results[step.Capability] = result.Reference
		}
	}

	return results, nil
}

// fail moves the item to terminal failed and publishes the failure.
func (m *Manager) fail(ctx context.Context, item *models.WorkItem, cause error, kind string) error {
	err := m.transition(ctx, "Dispatch", item, models.WorkItemStatusFailed)
	if err != nil {
		return err
	}

	m.logger.Error("Work item failed",
		"work_item_id", item.ID,
		"kind", kind,
		"attempts", item.Attempts,
		"error", cause)

	m.publish(ctx, item.ID, events.ItemFailed{
		BaseEvent: events.NewBaseEvent(events.ItemFailedEvent, item.ID),
		ItemType:  item.Type,
		Error:     cause.Error(),
		Kind:      kind,
		Attempts:  item.Attempts,
	})

	return persistence.NewWorkItemError("Dispatch", item.ID, cause)
}

func (m *Manager) load(ctx context.Context, op, id string) (*models.WorkItem, error) {
	item, err := m.persistence.WorkItems().GetByID(ctx, id)
	if err != nil {
		return nil, persistence.NewWorkItemError(op, id, err)
	}

	if item == nil {
		return nil, persistence.NewWorkItemError(op, id, persistence.ErrWorkItemNotFound)
	}

	return item, nil
}

// transition applies the state machine edge and persists with a
// compare-and-swap against the status the item held before the change.
// On a lost swap the in-memory copy is restored to what it held before,
// so callers never see a status or timestamp that was not persisted.
func (m *Manager) transition(ctx context.Context, op string, item *models.WorkItem, to models.WorkItemStatus) error {
	from := item.Status
	updatedAt := item.UpdatedAt

	err := item.Transition(to)
	if err != nil {
		return persistence.NewWorkItemError(op, item.ID, err)
	}

	err = m.persistence.WorkItems().CompareAndSwapStatus(ctx, item, from)
	if err != nil {
		item.Status = from
		item.UpdatedAt = updatedAt

		return persistence.NewWorkItemError(op, item.ID, err)
	}

	return nil
}

func (m *Manager) publish(ctx context.Context, key string, event eventbus.Event) {
	if m.publisher == nil {
		return
	}

	err := m.publisher.Publish(ctx, key, event)
	if err != nil {
		m.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (m *Manager) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

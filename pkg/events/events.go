// Package events defines event types and structures for work item lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukex/factotum/pkg/models"
)

type EventType string

// Topic is the single stream all lifecycle events are published on.
const Topic = "factotum.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Planning events.
	PlanCreatedEvent EventType = "plan.created"

	// Work item lifecycle events.
	ItemSubmittedEvent  EventType = "item.submitted"
	ItemDecidedEvent    EventType = "item.decided"
	ItemExpiredEvent    EventType = "item.expired"
	ItemDispatchedEvent EventType = "item.dispatched"
	ItemCompletedEvent  EventType = "item.completed"
	ItemFailedEvent     EventType = "item.failed"

	// Scheduler registration events.
	ScheduleCreatedEvent EventType = "schedule.created"
	ScheduleRemovedEvent EventType = "schedule.removed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkItemID string         `json:"work_item_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, workItemID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkItemID: workItemID,
		Metadata:   make(map[string]any),
	}
}

type PlanCreated struct {
	BaseEvent

	TaskType   string            `json:"task_type"`
	Complexity models.Complexity `json:"complexity"`
	StepCount  int               `json:"step_count"`
}

func (e PlanCreated) GetType() EventType {
	return PlanCreatedEvent
}

type ItemSubmitted struct {
	BaseEvent

	ItemType         string    `json:"item_type"`
	DecisionDeadline time.Time `json:"decision_deadline"`
}

func (e ItemSubmitted) GetType() EventType {
	return ItemSubmittedEvent
}

type ItemDecided struct {
	BaseEvent

	Decision models.Decision `json:"decision"`
	Actor    string          `json:"actor"`
}

func (e ItemDecided) GetType() EventType {
	return ItemDecidedEvent
}

type ItemExpired struct {
	BaseEvent

	DecisionDeadline time.Time `json:"decision_deadline"`
}

func (e ItemExpired) GetType() EventType {
	return ItemExpiredEvent
}

type ItemDispatched struct {
	BaseEvent

	ItemType string `json:"item_type"`
	Attempt  int    `json:"attempt"`
}

func (e ItemDispatched) GetType() EventType {
	return ItemDispatchedEvent
}

type ItemCompleted struct {
	BaseEvent

	ItemType   string         `json:"item_type"`
	Result     map[string]any `json:"result,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

func (e ItemCompleted) GetType() EventType {
	return ItemCompletedEvent
}

type ItemFailed struct {
	BaseEvent

	ItemType string `json:"item_type"`
	Error    string `json:"error"`
	Kind     string `json:"kind"` // transient, permanent, unknown_capability
	Attempts int    `json:"attempts"`
}

func (e ItemFailed) GetType() EventType {
	return ItemFailedEvent
}

type ScheduleCreated struct {
	BaseEvent

	Name           string `json:"name"`
	Pattern        string `json:"pattern"`
	CronExpression string `json:"cron_expression"`
	Platform       string `json:"platform"`
}

func (e ScheduleCreated) GetType() EventType {
	return ScheduleCreatedEvent
}

type ScheduleRemoved struct {
	BaseEvent

	Name     string `json:"name"`
	Platform string `json:"platform"`
}

func (e ScheduleRemoved) GetType() EventType {
	return ScheduleRemovedEvent
}

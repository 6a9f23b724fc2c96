package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := map[WorkItemStatus][]WorkItemStatus{
		WorkItemStatusNew:             {WorkItemStatusPlanned},
		WorkItemStatusPlanned:         {WorkItemStatusPendingApproval},
		WorkItemStatusPendingApproval: {WorkItemStatusApproved, WorkItemStatusRejected, WorkItemStatusExpired},
		WorkItemStatusApproved:        {WorkItemStatusDispatched, WorkItemStatusFailed},
		WorkItemStatusDispatched:      {WorkItemStatusDone, WorkItemStatusFailed, WorkItemStatusApproved},
		WorkItemStatusRejected:        {},
		WorkItemStatusExpired:         {},
		WorkItemStatusDone:            {},
		WorkItemStatusFailed:          {},
	}

	all := []WorkItemStatus{
		WorkItemStatusNew, WorkItemStatusPlanned, WorkItemStatusPendingApproval,
		WorkItemStatusApproved, WorkItemStatusDispatched, WorkItemStatusRejected,
		WorkItemStatusExpired, WorkItemStatusDone, WorkItemStatusFailed,
	}

	for from, targets := range allowed {
		for _, to := range all {
			expected := false

			for _, target := range targets {
				if target == to {
					expected = true
				}
			}

			assert.Equal(t, expected, CanTransition(from, to), "from %s to %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(WorkItemStatusRejected))
	assert.True(t, IsTerminal(WorkItemStatusExpired))
	assert.True(t, IsTerminal(WorkItemStatusDone))
	assert.True(t, IsTerminal(WorkItemStatusFailed))

	assert.False(t, IsTerminal(WorkItemStatusNew))
	assert.False(t, IsTerminal(WorkItemStatusPlanned))
	assert.False(t, IsTerminal(WorkItemStatusPendingApproval))
	assert.False(t, IsTerminal(WorkItemStatusApproved))
	assert.False(t, IsTerminal(WorkItemStatusDispatched))
}

func TestWorkItem_Transition(t *testing.T) {
	item := &WorkItem{ID: "wi-1", Status: WorkItemStatusNew}

	err := item.Transition(WorkItemStatusPlanned)
	require.NoError(t, err)
	assert.Equal(t, WorkItemStatusPlanned, item.Status)
	assert.False(t, item.UpdatedAt.IsZero())
}

func TestWorkItem_Transition_Invalid(t *testing.T) {
	item := &WorkItem{ID: "wi-1", Status: WorkItemStatusDone}

	err := item.Transition(WorkItemStatusApproved)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, WorkItemStatusDone, item.Status)
}

func TestWorkItem_RetryEdge(t *testing.T) {
	// A transient executor failure moves dispatched back to approved.
	item := &WorkItem{ID: "wi-1", Status: WorkItemStatusDispatched}

	err := item.Transition(WorkItemStatusApproved)
	require.NoError(t, err)

	err = item.Transition(WorkItemStatusDispatched)
	require.NoError(t, err)
}

func TestWorkItem_DeadlinePassed(t *testing.T) {
	now := time.Now().UTC()

	item := &WorkItem{ID: "wi-1"}
	assert.False(t, item.DeadlinePassed(now), "no deadline set")

	past := now.Add(-time.Hour)
	item.DecisionDeadline = &past
	assert.True(t, item.DeadlinePassed(now))

	future := now.Add(time.Hour)
	item.DecisionDeadline = &future
	assert.False(t, item.DeadlinePassed(now))

	item.DecisionDeadline = &now
	assert.True(t, item.DeadlinePassed(now), "deadline equal to now counts as passed")
}

func TestPlan_RequiresApproval(t *testing.T) {
	plan := &Plan{Steps: []Step{
		{Index: 0, Capability: "note"},
		{Index: 1, Capability: "email", RequiresApproval: true},
	}}
	assert.True(t, plan.RequiresApproval())

	plan = &Plan{Steps: []Step{{Index: 0, Capability: "note"}}}
	assert.False(t, plan.RequiresApproval())
}

func TestValidDecision(t *testing.T) {
	assert.True(t, ValidDecision(DecisionApproved))
	assert.True(t, ValidDecision(DecisionRejected))
	assert.True(t, ValidDecision(DecisionExpired))
	assert.False(t, ValidDecision(Decision("maybe")))
}

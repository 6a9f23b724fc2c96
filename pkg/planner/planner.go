package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dukex/factotum/pkg/eventbus"
	"github.com/dukex/factotum/pkg/events"
	"github.com/dukex/factotum/pkg/models"
)

// ErrInvalidTask indicates a description that cannot be planned: empty,
// or matching no known capability.
var ErrInvalidTask = errors.New("task description cannot be planned")

const (
	simpleMaxLength  = 120
	complexMinLength = 500
	complexMinSteps  = 3
)

// Generator turns free-text task descriptions into plans.
type Generator struct {
	logger    *slog.Logger
	publisher eventbus.EventPublisher
	rules     Rules
}

func NewGenerator(logger *slog.Logger, publisher eventbus.EventPublisher, rules Rules) *Generator {
	return &Generator{
		logger:    logger.With("module", "planner"),
		publisher: publisher,
		rules:     rules,
	}
}

// GeneratePlan decomposes a description into ordered steps. Steps follow
// the textual order of the first mention of each capability; a capability
// mentioned twice produces one step at its first position.
func (g *Generator) GeneratePlan(ctx context.Context, workItemID, description string) (*models.Plan, error) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty description", ErrInvalidTask)
	}

	lowered := strings.ToLower(trimmed)

	plan := &models.Plan{
		TaskType:   g.classify(lowered),
		Complexity: models.ComplexitySimple,
		Steps:      g.detectSteps(lowered),
	}

	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("%w: no known capability in %q", ErrInvalidTask, trimmed)
	}

	plan.Complexity = estimateComplexity(trimmed, len(plan.Steps))

	g.logger.Info("Generated plan",
		"task_type", plan.TaskType,
		"complexity", plan.Complexity,
		"steps", len(plan.Steps))

	if g.publisher != nil {
		event := events.PlanCreated{
			BaseEvent:  events.NewBaseEvent(events.PlanCreatedEvent, workItemID),
			TaskType:   plan.TaskType,
			Complexity: plan.Complexity,
			StepCount:  len(plan.Steps),
		}

		err := g.publisher.Publish(ctx, workItemID, event)
		if err != nil {
			g.logger.Warn("Failed to publish plan.created event", "error", err)
		}
	}

	return plan, nil
}

func (g *Generator) classify(lowered string) string {
	for _, rule := range g.rules.Types {
		if strings.Contains(lowered, rule.Keyword) {
			return rule.TaskType
		}
	}

	return "generic"
}

// detectSteps finds each capability's earliest mention and emits one step
// per capability, ordered by position in the text.
func (g *Generator) detectSteps(lowered string) []models.Step {
	type hit struct {
		rule     CapabilityRule
		position int
	}

	earliest := make(map[string]hit)

	order := make([]string, 0)

	for _, rule := range g.rules.Capabilities {
		position := strings.Index(lowered, rule.Keyword)
		if position < 0 {
			continue
		}

		existing, seen := earliest[rule.Capability]
		if !seen {
			earliest[rule.Capability] = hit{rule: rule, position: position}
			order = append(order, rule.Capability)

			continue
		}

		if position < existing.position {
			earliest[rule.Capability] = hit{rule: rule, position: position}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return earliest[order[i]].position < earliest[order[j]].position
	})

	steps := make([]models.Step, 0, len(order))

	for i, capability := range order {
		found := earliest[capability]

		step := models.Step{
			Index:            i,
			Capability:       capability,
			RequiresApproval: found.rule.RequiresApproval,
		}

		if i > 0 {
			previous := i - 1
			step.DependsOn = &previous
		}

		steps = append(steps, step)
	}

	return steps
}

func estimateComplexity(description string, stepCount int) models.Complexity {
	if stepCount >= complexMinSteps || len(description) > complexMinLength {
		return models.ComplexityComplex
	}

	if stepCount <= 1 && len(description) <= simpleMaxLength {
		return models.ComplexitySimple
	}

	return models.ComplexityMedium
}

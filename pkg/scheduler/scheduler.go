// Package scheduler registers recurring invocations with the host scheduler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/dukex/factotum/pkg/eventbus"
	"github.com/dukex/factotum/pkg/events"
	"github.com/dukex/factotum/pkg/models"
)

var (
	// ErrDuplicateSchedule indicates the name is already registered.
	ErrDuplicateSchedule = errors.New("schedule name already registered")

	// ErrScheduleNotFound indicates no registration exists under the name.
	// Removing a nonexistent name fails with it, never silently succeeds.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrInvalidPattern indicates a pattern outside the symbolic set that
	// is not a valid cron expression either.
	ErrInvalidPattern = errors.New("unrecognized recurrence pattern")
)

// Platform is the host scheduling facility registrations are delegated
// to. The platform owns persistence of the entries; the adapter owns only
// the pattern mapping. Injected explicitly, never autodetected.
type Platform interface {
	Name() string
	Install(ctx context.Context, entry *models.ScheduleEntry) error
	Entries(ctx context.Context) ([]*models.ScheduleEntry, error)
	Uninstall(ctx context.Context, name string) error
}

var everyNMinutes = regexp.MustCompile(`^every_(\d+)_minutes$`)

// resolvePattern maps a symbolic pattern to a 5-field cron expression.
// Anything outside the symbolic set must itself parse as cron.
func resolvePattern(pattern string) (string, error) {
	switch pattern {
	case "hourly":
		return "0 * * * *", nil
	case "daily":
		return "0 9 * * *", nil
	case "weekly":
		return "0 9 * * 1", nil
	case "monthly":
		return "0 9 1 * *", nil
	}

	if match := everyNMinutes.FindStringSubmatch(pattern); match != nil {
		minutes, err := strconv.Atoi(match[1])
		if err != nil || minutes < 1 || minutes > 59 {
			return "", fmt.Errorf("%w: %s", ErrInvalidPattern, pattern)
		}

		return fmt.Sprintf("*/%d * * * *", minutes), nil
	}

	probe := &models.ScheduleEntry{Name: "probe", Command: "probe", CronExpression: pattern}

	err := probe.Validate()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidPattern, pattern)
	}

	return pattern, nil
}

// Adapter translates symbolic recurrence patterns into platform
// registrations keyed by unique name.
type Adapter struct {
	logger    *slog.Logger
	platform  Platform
	publisher eventbus.EventPublisher
}

func NewAdapter(logger *slog.Logger, platform Platform, publisher eventbus.EventPublisher) *Adapter {
	return &Adapter{
		logger:    logger.With("module", "scheduler"),
		platform:  platform,
		publisher: publisher,
	}
}

// Create registers a new recurring invocation. Names are the uniqueness
// key; an existing name fails with ErrDuplicateSchedule.
func (a *Adapter) Create(ctx context.Context, name, command, pattern string) (*models.ScheduleEntry, error) {
	if name == "" || command == "" {
		return nil, models.ErrInvalidSchedule
	}

	existing, err := a.find(ctx, name)
	if err != nil && !errors.Is(err, ErrScheduleNotFound) {
		return nil, err
	}

	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSchedule, name)
	}

	expression, err := resolvePattern(pattern)
	if err != nil {
		return nil, err
	}

	entry := &models.ScheduleEntry{
		Name:           name,
		Command:        command,
		Pattern:        pattern,
		CronExpression: expression,
		Platform:       a.platform.Name(),
		CreatedAt:      time.Now().UTC(),
	}

	err = entry.RefreshNextDueAt(time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, pattern)
	}

	err = a.platform.Install(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to register schedule %s: %w", name, err)
	}

	a.logger.Info("Registered schedule",
		"name", name,
		"pattern", pattern,
		"cron_expression", expression,
		"platform", entry.Platform)

	a.publish(ctx, events.ScheduleCreated{
		BaseEvent:      events.NewBaseEvent(events.ScheduleCreatedEvent, ""),
		Name:           name,
		Pattern:        pattern,
		CronExpression: expression,
		Platform:       entry.Platform,
	})

	return entry, nil
}

// List returns the registrations currently held by the platform.
func (a *Adapter) List(ctx context.Context) ([]*models.ScheduleEntry, error) {
	entries, err := a.platform.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	return entries, nil
}

// Remove unregisters a schedule by name.
func (a *Adapter) Remove(ctx context.Context, name string) error {
	_, err := a.find(ctx, name)
	if err != nil {
		return err
	}

	err = a.platform.Uninstall(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to remove schedule %s: %w", name, err)
	}

	a.logger.Info("Removed schedule", "name", name)

	a.publish(ctx, events.ScheduleRemoved{
		BaseEvent: events.NewBaseEvent(events.ScheduleRemovedEvent, ""),
		Name:      name,
		Platform:  a.platform.Name(),
	})

	return nil
}

func (a *Adapter) find(ctx context.Context, name string) (*models.ScheduleEntry, error) {
	entries, err := a.platform.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	for _, entry := range entries {
		if entry.Name == name {
			return entry, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrScheduleNotFound, name)
}

func (a *Adapter) publish(ctx context.Context, event eventbus.Event) {
	if a.publisher == nil {
		return
	}

	err := a.publisher.Publish(ctx, "", event)
	if err != nil {
		a.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

// Package activity appends lifecycle events to a dated JSONL audit log.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dukex/factotum/pkg/eventbus"
	"github.com/dukex/factotum/pkg/events"
)

// Logger writes one JSON record per event to activity-YYYY-MM-DD.jsonl
// under its directory. The log is audit output only; nothing reads it
// back as control input.
type Logger struct {
	logger *slog.Logger
	dir    string

	mu sync.Mutex
}

func NewLogger(logger *slog.Logger, dir string) (*Logger, error) {
	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity directory: %w", err)
	}

	return &Logger{
		logger: logger.With("module", "activity"),
		dir:    dir,
	}, nil
}

// Record appends one event to the current UTC date's log file.
func (l *Logger) Record(_ context.Context, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode activity record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.dir, "activity-"+time.Now().UTC().Format("2006-01-02")+".jsonl")

	file, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open activity log: %w", err)
	}
	defer file.Close()

	_, err = file.Write(append(body, '\n'))
	if err != nil {
		return fmt.Errorf("failed to append activity record: %w", err)
	}

	return nil
}

// Bind subscribes the activity log to every lifecycle event type.
func (l *Logger) Bind(subscriber eventbus.EventSubscriber) error {
	all := []events.EventType{
		events.PlanCreatedEvent,
		events.ItemSubmittedEvent,
		events.ItemDecidedEvent,
		events.ItemExpiredEvent,
		events.ItemDispatchedEvent,
		events.ItemCompletedEvent,
		events.ItemFailedEvent,
		events.ScheduleCreatedEvent,
		events.ScheduleRemovedEvent,
	}

	for _, eventType := range all {
		err := subscriber.Handle(eventType, func(ctx context.Context, event any) error {
			err := l.Record(ctx, event)
			if err != nil {
				l.logger.Error("Failed to record activity", "error", err)
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

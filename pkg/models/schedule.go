package models

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned when schedule validation fails.
var ErrInvalidSchedule = errors.New("invalid schedule entry")

// ScheduleEntry is a recurring invocation registered with the host
// scheduler. The native scheduler store owns persistence; this record
// carries the mapping between the symbolic pattern and the cron
// expression handed to the platform.
type ScheduleEntry struct {
	// Name uniquely identifies the registration across the platform.
	Name string `json:"name" validate:"required"`

	// Command is the invocation handed to the platform verbatim.
	Command string `json:"command" validate:"required"`

	// Pattern is the symbolic recurrence (hourly, daily, ...) or a raw
	// 5-field cron expression as supplied by the caller.
	Pattern string `json:"pattern" validate:"required"`

	// CronExpression is the resolved 5-field expression registered with
	// the platform (minute hour day month weekday).
	CronExpression string `json:"cron_expression" validate:"required"`

	// Platform names the scheduler backend the entry was registered with.
	Platform string `json:"platform"`

	// NextDueAt is the precomputed next firing time, derived from
	// CronExpression for display purposes only.
	NextDueAt time.Time `json:"next_due_at"`

	CreatedAt time.Time `json:"created_at"`
}

// RefreshNextDueAt recomputes NextDueAt from the cron expression,
// using referenceTime as the starting point.
func (s *ScheduleEntry) RefreshNextDueAt(referenceTime time.Time) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	schedule, err := parser.Parse(s.CronExpression)
	if err != nil {
		return err
	}

	s.NextDueAt = schedule.Next(referenceTime)

	return nil
}

// Validate checks the entry fields and the cron expression syntax.
func (s *ScheduleEntry) Validate() error {
	if s.Name == "" || s.Command == "" || s.CronExpression == "" {
		return ErrInvalidSchedule
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(s.CronExpression)

	return err
}

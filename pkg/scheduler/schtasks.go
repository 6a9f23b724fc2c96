package scheduler

import (
	"context"
	"encoding/csv"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dukex/factotum/pkg/models"
)

// schtasks has no cron syntax, so registrations map the symbolic pattern
// directly onto its /SC flags. Raw cron expressions are rejected.
const schtasksFolder = `\factotum\`

// SchtasksPlatform delegates registrations to the Windows Task Scheduler
// via the schtasks binary. Tasks live under a dedicated folder so the
// adapter only ever touches its own registrations.
type SchtasksPlatform struct{}

func NewSchtasksPlatform() *SchtasksPlatform {
	return &SchtasksPlatform{}
}

func (p *SchtasksPlatform) Name() string {
	return "schtasks"
}

func (p *SchtasksPlatform) Install(ctx context.Context, entry *models.ScheduleEntry) error {
	args, err := scheduleArgs(entry.Pattern)
	if err != nil {
		return err
	}

	args = append([]string{
		"/Create",
		"/TN", schtasksFolder + entry.Name,
		"/TR", entry.Command,
		"/F",
	}, args...)

	output, err := exec.CommandContext(ctx, "schtasks", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to create scheduled task: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return nil
}

func (p *SchtasksPlatform) Entries(ctx context.Context) ([]*models.ScheduleEntry, error) {
	output, err := exec.CommandContext(ctx, "schtasks", "/Query", "/FO", "CSV", "/NH").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled tasks: %w", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(output))).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse schtasks output: %w", err)
	}

	entries := make([]*models.ScheduleEntry, 0)

	for _, record := range records {
		if len(record) == 0 || !strings.HasPrefix(record[0], schtasksFolder) {
			continue
		}

		entries = append(entries, &models.ScheduleEntry{
			Name:     strings.TrimPrefix(record[0], schtasksFolder),
			Platform: p.Name(),
		})
	}

	return entries, nil
}

func (p *SchtasksPlatform) Uninstall(ctx context.Context, name string) error {
	output, err := exec.CommandContext(ctx, "schtasks", "/Delete", "/TN", schtasksFolder+name, "/F").CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to delete scheduled task: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return nil
}

// scheduleArgs maps a symbolic pattern onto schtasks /SC flags.
func scheduleArgs(pattern string) ([]string, error) {
	switch pattern {
	case "hourly":
		return []string{"/SC", "HOURLY"}, nil
	case "daily":
		return []string{"/SC", "DAILY", "/ST", "09:00"}, nil
	case "weekly":
		return []string{"/SC", "WEEKLY", "/D", "MON", "/ST", "09:00"}, nil
	case "monthly":
		return []string{"/SC", "MONTHLY", "/D", "1", "/ST", "09:00"}, nil
	}

	if match := everyNMinutes.FindStringSubmatch(pattern); match != nil {
		return []string{"/SC", "MINUTE", "/MO", match[1]}, nil
	}

	return nil, fmt.Errorf("%w: %s (raw cron is not supported on schtasks)", ErrInvalidPattern, pattern)
}

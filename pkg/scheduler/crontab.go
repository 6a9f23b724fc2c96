package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dukex/factotum/pkg/models"
)

// crontab entries are tagged with a trailing marker comment so the
// adapter only ever touches its own lines.
const crontabMarker = "# factotum:"

// CrontabPlatform delegates registrations to the user crontab via the
// crontab binary. The crontab itself is the system of record.
type CrontabPlatform struct{}

func NewCrontabPlatform() *CrontabPlatform {
	return &CrontabPlatform{}
}

func (p *CrontabPlatform) Name() string {
	return "crontab"
}

func (p *CrontabPlatform) Install(ctx context.Context, entry *models.ScheduleEntry) error {
	lines, err := p.readLines(ctx)
	if err != nil {
		return err
	}

	line := fmt.Sprintf("%s %s %s%s", entry.CronExpression, entry.Command, crontabMarker, entry.Name)
	lines = append(lines, line)

	return p.writeLines(ctx, lines)
}

func (p *CrontabPlatform) Entries(ctx context.Context) ([]*models.ScheduleEntry, error) {
	lines, err := p.readLines(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.ScheduleEntry, 0)

	for _, line := range lines {
		markerAt := strings.LastIndex(line, crontabMarker)
		if markerAt < 0 {
			continue
		}

		name := strings.TrimSpace(line[markerAt+len(crontabMarker):])

		fields := strings.Fields(line[:markerAt])
		if len(fields) < 6 {
			continue
		}

		entry := &models.ScheduleEntry{
			Name:           name,
			CronExpression: strings.Join(fields[:5], " "),
			Command:        strings.Join(fields[5:], " "),
			Pattern:        strings.Join(fields[:5], " "),
			Platform:       p.Name(),
		}

		// Unparseable lines are still listed so they can be removed.
		_ = entry.RefreshNextDueAt(time.Now().UTC())

		entries = append(entries, entry)
	}

	return entries, nil
}

func (p *CrontabPlatform) Uninstall(ctx context.Context, name string) error {
	lines, err := p.readLines(ctx)
	if err != nil {
		return err
	}

	marker := crontabMarker + name
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.HasSuffix(strings.TrimSpace(line), marker) {
			continue
		}

		kept = append(kept, line)
	}

	return p.writeLines(ctx, kept)
}

func (p *CrontabPlatform) readLines(ctx context.Context) ([]string, error) {
	output, err := exec.CommandContext(ctx, "crontab", "-l").Output()
	if err != nil {
		// crontab -l exits nonzero when no crontab exists yet.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read crontab: %w", err)
	}

	raw := strings.Split(strings.TrimRight(string(output), "\n"), "\n")

	lines := make([]string, 0, len(raw))

	for _, line := range raw {
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines, nil
}

func (p *CrontabPlatform) writeLines(ctx context.Context, lines []string) error {
	body := strings.Join(lines, "\n")
	if body != "" {
		body += "\n"
	}

	cmd := exec.CommandContext(ctx, "crontab", "-")
	cmd.Stdin = strings.NewReader(body)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to write crontab: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return nil
}

package scheduler

import (
	"context"
	"sync"

	"github.com/dukex/factotum/pkg/models"
)

// MemoryPlatform holds registrations in process memory. Used in tests and
// as a platform stand-in where no host scheduler is available.
type MemoryPlatform struct {
	mu      sync.Mutex
	entries map[string]*models.ScheduleEntry
	order   []string
}

func NewMemoryPlatform() *MemoryPlatform {
	return &MemoryPlatform{
		entries: make(map[string]*models.ScheduleEntry),
	}
}

func (p *MemoryPlatform) Name() string {
	return "memory"
}

func (p *MemoryPlatform) Install(_ context.Context, entry *models.ScheduleEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored := *entry
	p.entries[entry.Name] = &stored
	p.order = append(p.order, entry.Name)

	return nil
}

func (p *MemoryPlatform) Entries(_ context.Context) ([]*models.ScheduleEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := make([]*models.ScheduleEntry, 0, len(p.entries))

	for _, name := range p.order {
		entry, ok := p.entries[name]
		if !ok {
			continue
		}

		copied := *entry
		entries = append(entries, &copied)
	}

	return entries, nil
}

func (p *MemoryPlatform) Uninstall(_ context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.entries, name)

	for i, stored := range p.order {
		if stored == name {
			p.order = append(p.order[:i], p.order[i+1:]...)

			break
		}
	}

	return nil
}

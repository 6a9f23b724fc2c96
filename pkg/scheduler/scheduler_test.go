package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/factotum/pkg/log"
)

func TestResolvePattern(t *testing.T) {
	tests := []struct {
		pattern  string
		expected string
		wantErr  bool
	}{
		{pattern: "hourly", expected: "0 * * * *"},
		{pattern: "daily", expected: "0 9 * * *"},
		{pattern: "weekly", expected: "0 9 * * 1"},
		{pattern: "monthly", expected: "0 9 1 * *"},
		{pattern: "every_5_minutes", expected: "*/5 * * * *"},
		{pattern: "every_30_minutes", expected: "*/30 * * * *"},
		{pattern: "15 8 * * 5", expected: "15 8 * * 5"},
		{pattern: "every_0_minutes", wantErr: true},
		{pattern: "every_90_minutes", wantErr: true},
		{pattern: "fortnightly", wantErr: true},
		{pattern: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			expression, err := resolvePattern(tc.pattern)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidPattern)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, expression)
		})
	}
}

func TestScheduleArgs(t *testing.T) {
	tests := []struct {
		pattern  string
		expected []string
		wantErr  bool
	}{
		{pattern: "hourly", expected: []string{"/SC", "HOURLY"}},
		{pattern: "daily", expected: []string{"/SC", "DAILY", "/ST", "09:00"}},
		{pattern: "weekly", expected: []string{"/SC", "WEEKLY", "/D", "MON", "/ST", "09:00"}},
		{pattern: "monthly", expected: []string{"/SC", "MONTHLY", "/D", "1", "/ST", "09:00"}},
		{pattern: "every_15_minutes", expected: []string{"/SC", "MINUTE", "/MO", "15"}},
		{pattern: "15 8 * * 5", wantErr: true},
		{pattern: "fortnightly", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			args, err := scheduleArgs(tc.pattern)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidPattern)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, args)
		})
	}
}

func newTestAdapter() (*Adapter, *MemoryPlatform) {
	platform := NewMemoryPlatform()

	return NewAdapter(log.WithModule("test"), platform, nil), platform
}

func TestAdapter_Create(t *testing.T) {
	adapter, _ := newTestAdapter()

	entry, err := adapter.Create(t.Context(), "morning-sweep", "factotum sweep", "daily")
	require.NoError(t, err)

	assert.Equal(t, "morning-sweep", entry.Name)
	assert.Equal(t, "0 9 * * *", entry.CronExpression)
	assert.Equal(t, "daily", entry.Pattern)
	assert.Equal(t, "memory", entry.Platform)
	assert.False(t, entry.NextDueAt.IsZero())
}

func TestAdapter_Create_Duplicate(t *testing.T) {
	adapter, _ := newTestAdapter()

	_, err := adapter.Create(t.Context(), "sweep", "factotum sweep", "hourly")
	require.NoError(t, err)

	_, err = adapter.Create(t.Context(), "sweep", "factotum sweep", "daily")
	require.ErrorIs(t, err, ErrDuplicateSchedule)
}

func TestAdapter_Create_InvalidPattern(t *testing.T) {
	adapter, _ := newTestAdapter()

	_, err := adapter.Create(t.Context(), "sweep", "factotum sweep", "whenever")
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestAdapter_List(t *testing.T) {
	adapter, _ := newTestAdapter()

	_, err := adapter.Create(t.Context(), "a", "cmd-a", "hourly")
	require.NoError(t, err)
	_, err = adapter.Create(t.Context(), "b", "cmd-b", "daily")
	require.NoError(t, err)

	entries, err := adapter.List(t.Context())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
}

func TestAdapter_Remove(t *testing.T) {
	adapter, _ := newTestAdapter()

	_, err := adapter.Create(t.Context(), "sweep", "factotum sweep", "hourly")
	require.NoError(t, err)

	require.NoError(t, adapter.Remove(t.Context(), "sweep"))

	entries, err := adapter.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAdapter_Remove_NotFound(t *testing.T) {
	adapter, _ := newTestAdapter()

	err := adapter.Remove(t.Context(), "ghost")
	require.ErrorIs(t, err, ErrScheduleNotFound)
}

package activity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/factotum/pkg/events"
	"github.com/dukex/factotum/pkg/log"
)

func TestLogger_Record(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(log.WithModule("test"), dir)
	require.NoError(t, err)

	event := events.ItemDecided{
		BaseEvent: events.NewBaseEvent(events.ItemDecidedEvent, "wi-1"),
		Decision:  "approved",
		Actor:     "human",
	}

	require.NoError(t, logger.Record(t.Context(), event))
	require.NoError(t, logger.Record(t.Context(), event))

	path := filepath.Join(dir, "activity-"+time.Now().UTC().Format("2006-01-02")+".jsonl")
	body, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	require.Len(t, lines, 2, "one JSON record per event, appended")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, "wi-1", decoded["work_item_id"])
	assert.Equal(t, "item.decided", decoded["type"])
}

func TestNewLogger_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "activity")

	_, err := NewLogger(log.WithModule("test"), dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

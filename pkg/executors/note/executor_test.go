package note

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/factotum/pkg/log"
)

func TestExecutor_Execute(t *testing.T) {
	dir := t.TempDir()
	executor := NewExecutor(dir)

	result, err := executor.Execute(t.Context(), map[string]any{
		"title": "Weekly Summary",
		"body":  "All tasks done.",
	}, log.WithModule("test"))
	require.NoError(t, err)

	assert.FileExists(t, result.Reference)
	assert.Equal(t, dir, filepath.Dir(result.Reference))
	assert.Contains(t, filepath.Base(result.Reference), "weekly-summary-")

	body, err := os.ReadFile(result.Reference)
	require.NoError(t, err)
	assert.Contains(t, string(body), "# Weekly Summary")
	assert.Contains(t, string(body), "All tasks done.")
}

func TestExecutor_Execute_DefaultsTitleAndBody(t *testing.T) {
	executor := NewExecutor(t.TempDir())

	result, err := executor.Execute(t.Context(), map[string]any{
		"description": "remember the milk",
	}, log.WithModule("test"))
	require.NoError(t, err)

	body, err := os.ReadFile(result.Reference)
	require.NoError(t, err)
	assert.Contains(t, string(body), "remember the milk")
	assert.Contains(t, filepath.Base(result.Reference), "note-")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "weekly-summary", slugify("Weekly Summary"))
	assert.Equal(t, "q2-report-v1", slugify("Q2 Report (v1)"))
	assert.Equal(t, "note", slugify("!!!"))
}

func TestFactory(t *testing.T) {
	factory := NewFactory("/tmp/notes")
	assert.Equal(t, "note", factory.ID())

	executor, err := factory.Create(map[string]any{"dir": "/tmp/other"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other", executor.(*Executor).dir)
}

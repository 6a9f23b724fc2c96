// Package note writes markdown notes to a local directory.
package note

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dukex/factotum/pkg/protocol"
	"github.com/dukex/factotum/pkg/template"
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9-]+`)

// Executor renders one markdown note per invocation. Purely local, so it
// never needs approval and failures are filesystem errors only.
type Executor struct {
	dir string
}

func NewExecutor(dir string) *Executor {
	return &Executor{dir: dir}
}

func (e *Executor) Execute(_ context.Context, payload map[string]any, logger *slog.Logger) (*protocol.ExecutionResult, error) {
	title, _ := payload["title"].(string)
	if title == "" {
		title = "note"
	}

	body, _ := payload["body"].(string)
	if body == "" {
		body, _ = payload["description"].(string)
	}

	content, err := template.RenderString("# {{.title}}\n\nCreated: {{now}}\n\n{{.body}}\n", map[string]any{
		"title": title,
		"body":  body,
	})
	if err != nil {
		return nil, protocol.MarkPermanent(fmt.Errorf("failed to render note: %w", err))
	}

	err = os.MkdirAll(e.dir, 0750)
	if err != nil {
		return nil, protocol.MarkTransient(fmt.Errorf("failed to create notes directory: %w", err))
	}

	path := filepath.Join(e.dir, fmt.Sprintf("%s-%s.md", slugify(title), time.Now().UTC().Format("20060102-150405")))

	err = os.WriteFile(path, []byte(content), 0600)
	if err != nil {
		return nil, protocol.MarkTransient(fmt.Errorf("failed to write note: %w", err))
	}

	logger.Info("Wrote note", "path", path)

	return &protocol.ExecutionResult{
		Reference: path,
	}, nil
}

func slugify(title string) string {
	slug := unsafeChars.ReplaceAllString(strings.ToLower(title), "-")

	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "note"
	}

	return slug
}

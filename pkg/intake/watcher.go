package intake

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/persistence"
)

// Decider records a human decision. Satisfied by lifecycle.Manager.
type Decider interface {
	RecordDecision(ctx context.Context, id string, decision models.Decision, actor string) (*models.WorkItem, error)
}

// Watcher turns document relocation into recorded decisions: a document
// appearing under approved/ or rejected/ is the human's decision.
type Watcher struct {
	logger  *slog.Logger
	view    *FolderView
	decider Decider
	actor   string
}

func NewWatcher(logger *slog.Logger, view *FolderView, decider Decider, actor string) *Watcher {
	if actor == "" {
		actor = "human"
	}

	return &Watcher{
		logger:  logger.With("module", "intake"),
		view:    view,
		decider: decider,
		actor:   actor,
	}
}

// Start watches the decision folders until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer notifier.Close()

	folders := map[string]models.Decision{
		w.view.FolderFor(models.WorkItemStatusApproved): models.DecisionApproved,
		w.view.FolderFor(models.WorkItemStatusRejected): models.DecisionRejected,
	}

	for folder := range folders {
		err = notifier.Add(folder)
		if err != nil {
			return err
		}
	}

	w.logger.Info("Watching decision folders", "root", w.view.Root())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-notifier.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			decision, tracked := folders[filepath.Dir(event.Name)]
			if !tracked {
				continue
			}

			w.handle(ctx, event.Name, decision)
		case err, ok := <-notifier.Errors:
			if !ok {
				return nil
			}

			w.logger.Warn("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, path string, decision models.Decision) {
	id := strings.TrimSuffix(filepath.Base(path), ".md")
	if id == "" || strings.HasPrefix(id, ".") {
		return
	}

	_, err := w.decider.RecordDecision(ctx, id, decision, w.actor)
	if err != nil {
		// A relocation of an already-decided item is not an error worth
		// more than a debug line; the first decision won.
		if persistence.IsWorkItemNotFound(err) || errors.Is(err, models.ErrInvalidTransition) {
			w.logger.Debug("Ignored relocation", "work_item_id", id, "error", err)

			return
		}

		w.logger.Error("Failed to record decision", "work_item_id", id, "error", err)

		return
	}

	w.logger.Info("Recorded decision from relocation",
		"work_item_id", id,
		"decision", decision)
}

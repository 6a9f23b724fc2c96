package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/factotum/pkg/activity"
	"github.com/dukex/factotum/pkg/cmd"
	"github.com/dukex/factotum/pkg/eventbus"
	"github.com/dukex/factotum/pkg/intake"
	"github.com/dukex/factotum/pkg/lifecycle"
	"github.com/dukex/factotum/pkg/log"
	"github.com/dukex/factotum/pkg/persistence"
	"github.com/dukex/factotum/pkg/planner"
	"github.com/dukex/factotum/pkg/registry"
	"github.com/dukex/factotum/pkg/services"
)

// runtime wires the full pipeline for one CLI invocation.
type runtime struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	registry    *registry.Registry
	generator   *planner.Generator
	manager     *lifecycle.Manager
	service     *services.WorkItem
	view        *intake.FolderView
	activity    *activity.Logger
}

func newRuntime(ctx context.Context, command *cli.Command) (*runtime, error) {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("factotum")

	store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, err
	}

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), "factotum", logger)
	if err != nil {
		return nil, err
	}

	rules := planner.DefaultRules()
	if rulesFile := command.String("rules-file"); rulesFile != "" {
		rules, err = planner.LoadRules(rulesFile)
		if err != nil {
			return nil, err
		}
	}

	workspace := command.String("workspace")
	if workspace == "" {
		home, _ := os.UserHomeDir()
		workspace = filepath.Join(home, ".factotum", "workspace")
	}

	view, err := intake.NewFolderView(workspace)
	if err != nil {
		return nil, err
	}

	activityDir := command.String("activity-dir")
	if activityDir == "" {
		activityDir = filepath.Join(workspace, "activity")
	}

	activityLog, err := activity.NewLogger(logger, activityDir)
	if err != nil {
		return nil, err
	}

	reg := cmd.NewRegistry(logger, cmd.DefaultRegistryConfig())
	generator := planner.NewGenerator(logger, eventBus, rules)
	manager := lifecycle.NewManager(logger, store, reg, generator, eventBus, lifecycle.DefaultPolicy())

	return &runtime{
		logger:      logger,
		persistence: store,
		eventBus:    eventBus,
		registry:    reg,
		generator:   generator,
		manager:     manager,
		service:     services.NewWorkItem(store, manager),
		view:        view,
		activity:    activityLog,
	}, nil
}

func (r *runtime) close(ctx context.Context) {
	err := r.eventBus.Close()
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
	}

	err = r.persistence.Close(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
	}
}

// project refreshes the folder view of one item; view failures are logged
// and never fail the operation, the persisted status is the record.
func (r *runtime) project(id string) {
	item, err := r.persistence.WorkItems().GetByID(context.Background(), id)
	if err != nil || item == nil {
		return
	}

	err = r.view.Project(item)
	if err != nil {
		r.logger.Warn("Failed to project work item", "work_item_id", id, "error", err)
	}
}

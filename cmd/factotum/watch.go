package main

import (
	"context"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dukex/factotum/pkg/intake"
	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/otelhelper"
)

// watchCommand runs the long-lived daemon: the folder watcher turns
// document relocations into decisions, a ticker sweeps expired items and
// dispatches approved ones, and the activity log records every event.
func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run the approval watcher and periodic sweep loop",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Usage:   "Sweep and dispatch interval",
				Value:   time.Minute,
				Sources: cli.EnvVars("FACTOTUM_SWEEP_INTERVAL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OTLP traces for sweep and dispatch",
				Sources: cli.EnvVars("FACTOTUM_TRACING"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			r, err := newRuntime(ctx, command)
			if err != nil {
				return err
			}
			defer r.close(ctx)

			err = r.activity.Bind(r.eventBus)
			if err != nil {
				return err
			}

			go func() {
				err := r.eventBus.Subscribe(ctx)
				if err != nil && ctx.Err() == nil {
					r.logger.Error("Event subscription stopped", "error", err)
				}
			}()

			tracer := trace.Tracer(noop.NewTracerProvider().Tracer("factotum"))

			if command.Bool("tracing") {
				var shutdown func(context.Context) error

				tracer, shutdown, err = otelhelper.NewTracer(ctx, "factotum")
				if err != nil {
					return err
				}

				defer func() {
					err := shutdown(context.WithoutCancel(ctx))
					if err != nil {
						r.logger.Error("Failed to shut down tracer", "error", err)
					}
				}()
			}

			watcher := intake.NewWatcher(r.logger, r.view, r.manager, command.String("actor"))

			go func() {
				err := watcher.Start(ctx)
				if err != nil && ctx.Err() == nil {
					r.logger.Error("Folder watcher stopped", "error", err)
				}
			}()

			ticker := time.NewTicker(command.Duration("interval"))
			defer ticker.Stop()

			r.logger.Info("Watching for decisions", "interval", command.Duration("interval"))

			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					r.tick(ctx, tracer)
				}
			}
		},
	}
}

// tick runs one maintenance pass: expire overdue items, dispatch approved
// ones, reconcile the folder view.
func (r *runtime) tick(ctx context.Context, tracer trace.Tracer) {
	sweepCtx, sweepSpan := otelhelper.StartSpan(ctx, tracer, "sweep_expired")

	_, err := r.manager.SweepExpired(sweepCtx)
	if err != nil {
		otelhelper.SetError(sweepSpan, err)
		r.logger.Error("Sweep failed", "error", err)
	}

	sweepSpan.End()

	approved, err := r.persistence.WorkItems().ListByStatus(ctx, models.WorkItemStatusApproved)
	if err != nil {
		r.logger.Error("Failed to list approved items", "error", err)

		return
	}

	for _, item := range approved {
		dispatchCtx, span := otelhelper.StartSpan(ctx, tracer, "dispatch",
			attribute.String(otelhelper.WorkItemIDKey, item.ID),
			attribute.String(otelhelper.WorkItemTypeKey, item.Type),
		)

		_, err = r.manager.Dispatch(dispatchCtx, item.ID)
		if err != nil {
			otelhelper.SetError(span, err, attribute.String(otelhelper.WorkItemIDKey, item.ID))
			r.logger.Warn("Dispatch failed", "work_item_id", item.ID, "error", err)
		}

		span.End()
	}

	items, err := r.persistence.WorkItems().ListAll(ctx)
	if err != nil {
		return
	}

	for _, item := range items {
		err = r.view.Project(item)
		if err != nil {
			r.logger.Warn("Failed to project work item", "work_item_id", item.ID, "error", err)
		}
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/factotum/pkg/intake"
	"github.com/dukex/factotum/pkg/models"
)

// createCommand ingests a work item document from a file or stdin.
func createCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Ingest a work item document (file argument or stdin)",
		ArgsUsage: "[document]",
		Action: func(ctx context.Context, command *cli.Command) error {
			r, err := newRuntime(ctx, command)
			if err != nil {
				return err
			}
			defer r.close(ctx)

			source := os.Stdin

			if path := command.Args().First(); path != "" {
				source, err = os.Open(path)
				if err != nil {
					return err
				}
				defer source.Close()
			}

			doc, err := intake.ParseDocument(source)
			if err != nil {
				return err
			}

			item := doc.ToWorkItem()

			err = r.persistence.WorkItems().Save(ctx, item)
			if err != nil {
				return err
			}

			r.project(item.ID)
			fmt.Println(item.ID)

			return nil
		},
	}
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Generate and attach a plan to a new work item",
		ArgsUsage: "<id>",
		Action: itemAction(func(ctx context.Context, r *runtime, _ *cli.Command, id string) error {
			item, err := r.manager.Plan(ctx, id)
			if err != nil {
				return err
			}

			return printJSON(item)
		}),
	}
}

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "Submit a planned work item for approval",
		ArgsUsage: "<id>",
		Action: itemAction(func(ctx context.Context, r *runtime, _ *cli.Command, id string) error {
			item, err := r.manager.SubmitForApproval(ctx, id)
			if err != nil {
				return err
			}

			return printJSON(item)
		}),
	}
}

func decisionCommand(name string) *cli.Command {
	decision := models.DecisionApproved
	if name == "reject" {
		decision = models.DecisionRejected
	}

	return &cli.Command{
		Name:      name,
		Usage:     fmt.Sprintf("Record a %s decision on a pending work item", decision),
		ArgsUsage: "<id>",
		Action: itemAction(func(ctx context.Context, r *runtime, command *cli.Command, id string) error {
			actor := command.String("actor")
			if actor == "" {
				actor = "human"
			}

			item, err := r.service.Decide(ctx, id, decision, actor)
			if err != nil {
				return err
			}

			return printJSON(item)
		}),
	}
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Expire pending work items whose decision deadline has passed",
		Action: func(ctx context.Context, command *cli.Command) error {
			r, err := newRuntime(ctx, command)
			if err != nil {
				return err
			}
			defer r.close(ctx)

			count, err := r.manager.SweepExpired(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("expired %d item(s)\n", count)

			return nil
		},
	}
}

func dispatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "dispatch",
		Usage:     "Execute an approved work item",
		ArgsUsage: "<id>",
		Action: itemAction(func(ctx context.Context, r *runtime, _ *cli.Command, id string) error {
			item, err := r.manager.Dispatch(ctx, id)
			if err != nil {
				return err
			}

			return printJSON(item)
		}),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List work items, optionally by status",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "status",
				Usage: "Filter by status",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			r, err := newRuntime(ctx, command)
			if err != nil {
				return err
			}
			defer r.close(ctx)

			items, err := r.service.List(ctx, command.String("status"))
			if err != nil {
				return err
			}

			return printJSON(items)
		},
	}
}

// itemAction wraps a per-item command: builds the runtime, requires an id
// argument, refreshes the folder projection afterwards.
func itemAction(action func(ctx context.Context, r *runtime, command *cli.Command, id string) error) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		id := command.Args().First()
		if id == "" {
			return fmt.Errorf("work item id argument is required")
		}

		r, err := newRuntime(ctx, command)
		if err != nil {
			return err
		}
		defer r.close(ctx)

		err = action(ctx, r, command, id)

		r.project(id)

		return err
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

package main

import (
	"context"
	"fmt"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/factotum/pkg/log"
	"github.com/dukex/factotum/pkg/scheduler"
)

// scheduleCommand manages recurring invocations on the host scheduler.
func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Manage recurring invocations on the host scheduler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "platform",
				Usage:   "Scheduler platform (crontab, schtasks, memory)",
				Value:   "crontab",
				Sources: cli.EnvVars("FACTOTUM_SCHEDULER"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Register a recurring invocation",
				ArgsUsage: "<name> <pattern> <command...>",
				Action: func(ctx context.Context, command *cli.Command) error {
					args := command.Args().Slice()
					if len(args) < 3 {
						return fmt.Errorf("usage: schedule create <name> <pattern> <command>")
					}

					adapter, err := newAdapter(ctx, command)
					if err != nil {
						return err
					}

					entry, err := adapter.Create(ctx, args[0], strings.Join(args[2:], " "), args[1])
					if err != nil {
						return err
					}

					return printJSON(entry)
				},
			},
			{
				Name:  "list",
				Usage: "List registered invocations",
				Action: func(ctx context.Context, command *cli.Command) error {
					adapter, err := newAdapter(ctx, command)
					if err != nil {
						return err
					}

					entries, err := adapter.List(ctx)
					if err != nil {
						return err
					}

					return printJSON(entries)
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a registered invocation by name",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, command *cli.Command) error {
					name := command.Args().First()
					if name == "" {
						return fmt.Errorf("schedule name argument is required")
					}

					adapter, err := newAdapter(ctx, command)
					if err != nil {
						return err
					}

					return adapter.Remove(ctx, name)
				},
			},
		},
	}
}

// newAdapter builds a scheduler adapter without the full pipeline
// runtime; schedule management needs no persistence or event bus.
func newAdapter(_ context.Context, command *cli.Command) (*scheduler.Adapter, error) {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("factotum")

	var platform scheduler.Platform

	switch command.String("platform") {
	case "memory":
		platform = scheduler.NewMemoryPlatform()
	case "schtasks":
		platform = scheduler.NewSchtasksPlatform()
	case "crontab", "":
		platform = scheduler.NewCrontabPlatform()
	default:
		return nil, fmt.Errorf("unsupported scheduler platform: %s", command.String("platform"))
	}

	return scheduler.NewAdapter(logger, platform, nil), nil
}

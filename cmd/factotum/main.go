package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/factotum/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "factotum",
		Usage:                 "Approval-gated personal automation pipeline",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence",
				Value:   "file://" + defaultDataDir(),
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "workspace",
				Usage:   "Directory holding the folder-based approval surface",
				Sources: cli.EnvVars("FACTOTUM_WORKSPACE"),
			},
			&cli.StringFlag{
				Name:    "activity-dir",
				Usage:   "Directory for the dated activity logs",
				Sources: cli.EnvVars("FACTOTUM_ACTIVITY_DIR"),
			},
			&cli.StringFlag{
				Name:    "rules-file",
				Usage:   "YAML file overriding the built-in planning rules",
				Sources: cli.EnvVars("FACTOTUM_RULES"),
			},
			&cli.StringFlag{
				Name:    "actor",
				Usage:   "Actor name recorded on decisions",
				Sources: cli.EnvVars("FACTOTUM_ACTOR", "USER"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Commands: []*cli.Command{
			createCommand(),
			planCommand(),
			submitCommand(),
			decisionCommand("approve"),
			decisionCommand("reject"),
			sweepCommand(),
			dispatchCommand(),
			listCommand(),
			watchCommand(),
			scheduleCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("factotum").Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()

	return home + "/.factotum/data"
}

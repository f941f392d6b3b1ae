package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/studygroups/cmd/app/commands"
	"github.com/allisson/studygroups/internal/app"
	"github.com/allisson/studygroups/internal/config"
)

func getOutboxCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "clean-outbox",
			Usage: "Delete outbox records published more than the given hours ago",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "hours",
					Aliases:  []string{"H"},
					Required: true,
					Usage:    "Delete published records older than this many hours",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many records would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				relay, err := container.RelayUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanOutbox(
					ctx,
					relay,
					container.Logger(),
					cmd.Root().Writer,
					int(cmd.Int("hours")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-flagged-outbox",
			Usage: "List outbox records that exhausted their delivery attempts",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "offset",
					Value: 0,
					Usage: "Number of records to skip",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Maximum number of records to list",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				relay, err := container.RelayUseCase()
				if err != nil {
					return err
				}

				return commands.RunListFlaggedOutbox(
					ctx,
					relay,
					cmd.Root().Writer,
					int(cmd.Int("offset")),
					int(cmd.Int("limit")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "requeue-outbox",
			Usage: "Put a flagged outbox record back in the delivery queue",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Outbox record ID (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				relay, err := container.RelayUseCase()
				if err != nil {
					return err
				}

				return commands.RunRequeueOutbox(
					ctx,
					relay,
					container.Logger(),
					cmd.Root().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
	}
}

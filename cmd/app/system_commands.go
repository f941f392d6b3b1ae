package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/studygroups/cmd/app/commands"
	"github.com/allisson/studygroups/internal/app"
	"github.com/allisson/studygroups/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server (and the outbox relay when OUTBOX_RELAY_ENABLED is set)",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Value: 0,
					Usage: "Number of migrations to apply, negative to roll back (0 applies all pending)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(
					container.Logger(),
					cfg.DBDriver,
					cfg.DBConnectionString,
					int(cmd.Int("steps")),
				)
			},
		},
		{
			Name:  "relay",
			Usage: "Run the outbox relay and the scheduled cleanup of published records",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(context.Background()) }()

				relay, err := container.RelayUseCase()
				if err != nil {
					return err
				}

				ctx, cancel := signalContext(ctx)
				defer cancel()

				return commands.RunRelay(
					ctx,
					relay,
					container.Logger(),
					cfg.OutboxCleanupSchedule,
					cfg.OutboxRetention,
				)
			},
		},
	}
}

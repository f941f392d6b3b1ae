package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/studygroups/cmd/app/commands"
	"github.com/allisson/studygroups/internal/app"
	"github.com/allisson/studygroups/internal/config"
)

func getGroupCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Register a user that can own study groups",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "User display name",
				},
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "User email address",
				},
				&cli.StringFlag{
					Name:    "judge-handle",
					Aliases: []string{"j"},
					Usage:   "Online judge handle",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userUseCase,
					container.Logger(),
					cmd.Root().Writer,
					cmd.String("name"),
					cmd.String("email"),
					cmd.String("judge-handle"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-group",
			Usage: "Create a study group through the create group saga",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "owner-id",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Owner user ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Group name, unique among groups",
				},
				&cli.StringFlag{
					Name:    "description",
					Aliases: []string{"d"},
					Usage:   "Group description",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				createGroupUseCase, err := container.CreateGroupUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateGroup(
					ctx,
					createGroupUseCase,
					container.Logger(),
					cmd.Root().Writer,
					cmd.String("owner-id"),
					cmd.String("name"),
					cmd.String("description"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "sweep-pending-groups",
			Usage: "Delete groups left pending by sagas that never reached a terminal state",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "older-than-minutes",
					Value: 15,
					Usage: "Only delete groups pending for longer than this many minutes",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				groupUseCase, err := container.GroupUseCase()
				if err != nil {
					return err
				}

				return commands.RunSweepPendingGroups(
					ctx,
					groupUseCase,
					container.Logger(),
					cmd.Root().Writer,
					int(cmd.Int("older-than-minutes")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-sagas",
			Usage: "List saga executions, newest first",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "status",
					Aliases: []string{"s"},
					Usage:   "Only list executions in this status (e.g. COMPENSATION_FAILED)",
				},
				&cli.IntFlag{
					Name:  "offset",
					Value: 0,
					Usage: "Number of executions to skip",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Maximum number of executions to list",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				executionUseCase, err := container.ExecutionUseCase()
				if err != nil {
					return err
				}

				return commands.RunListSagas(
					ctx,
					executionUseCase,
					cmd.Root().Writer,
					cmd.String("status"),
					int(cmd.Int("offset")),
					int(cmd.Int("limit")),
					cmd.String("format"),
				)
			},
		},
	}
}

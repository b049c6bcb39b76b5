package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func nameCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "name",
		Usage: "manage a snippet's bound names",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				ArgsUsage: "<ref> <name>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 2 {
						return errMissingArg("ref and name")
					}
					sn, err := resolveChecksum(c.Context, env, c.Args().Get(0))
					if err != nil {
						return err
					}
					return env.backend.AddName(c.Context, sn.Checksum, c.Args().Get(1))
				},
			},
			{
				Name:      "remove",
				ArgsUsage: "<ref> <name>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 2 {
						return errMissingArg("ref and name")
					}
					sn, err := resolveChecksum(c.Context, env, c.Args().Get(0))
					if err != nil {
						return err
					}
					return env.backend.RemoveName(c.Context, sn.Checksum, c.Args().Get(1))
				},
			},
		},
	}
}

func tagCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "tag",
		Usage: "manage a snippet's tags",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				ArgsUsage: "<ref> <tag>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 2 {
						return errMissingArg("ref and tag")
					}
					sn, err := resolveChecksum(c.Context, env, c.Args().Get(0))
					if err != nil {
						return err
					}
					return env.backend.AddTag(c.Context, sn.Checksum, c.Args().Get(1))
				},
			},
			{
				Name:      "remove",
				ArgsUsage: "<ref> <tag>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 2 {
						return errMissingArg("ref and tag")
					}
					sn, err := resolveChecksum(c.Context, env, c.Args().Get(0))
					if err != nil {
						return err
					}
					return env.backend.RemoveTag(c.Context, sn.Checksum, c.Args().Get(1))
				},
			},
		},
	}
}

func collectionCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "collection",
		Usage: "manage collections",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				ArgsUsage: "<name> [description]",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return errMissingArg("name")
					}
					return env.backend.CreateCollection(c.Context, c.Args().Get(0), c.Args().Get(1))
				},
			},
			{
				Name:      "delete",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return errMissingArg("name")
					}
					return env.backend.DeleteCollection(c.Context, c.Args().Get(0))
				},
			},
			{
				Name: "list",
				Action: func(c *cli.Context) error {
					cols, err := env.backend.ListCollections(c.Context)
					if err != nil {
						return err
					}
					for _, col := range cols {
						fmt.Fprintf(os.Stdout, "%s\t%s\n", col.Name, col.Description)
					}
					return nil
				},
			},
			{
				Name:      "show",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return errMissingArg("name")
					}
					col, err := env.backend.GetCollection(c.Context, c.Args().Get(0))
					if err != nil {
						return err
					}
					fmt.Fprintf(os.Stdout, "name: %s\ndescription: %s\ncreated_at: %s\n", col.Name, col.Description, col.CreatedAt)
					return nil
				},
			},
			{
				Name:      "add",
				ArgsUsage: "<ref> <collection>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 2 {
						return errMissingArg("ref and collection")
					}
					sn, err := resolveChecksum(c.Context, env, c.Args().Get(0))
					if err != nil {
						return err
					}
					return env.backend.AssignCollection(c.Context, sn.Checksum, c.Args().Get(1))
				},
			},
			{
				Name:      "remove",
				ArgsUsage: "<ref>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return errMissingArg("ref")
					}
					sn, err := resolveChecksum(c.Context, env, c.Args().Get(0))
					if err != nil {
						return err
					}
					return env.backend.AssignCollection(c.Context, sn.Checksum, "")
				},
			},
		},
	}
}

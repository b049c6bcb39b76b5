package main

import (
	"github.com/urfave/cli/v2"
)

const appVersion = "0.1.0"

func buildApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "resembl",
		Usage:   "local similarity search over assembly-language snippets",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "console logging at debug level"},
			&cli.StringFlag{Name: "database-url", Usage: "storage backend DSN (sqlite path or http(s) URL)", EnvVars: []string{"DATABASE_URL"}},
			&cli.StringFlag{Name: "cache-dir", Usage: "LSH cache directory", EnvVars: []string{"CACHE_DIR"}},
			&cli.StringFlag{Name: "config-dir", Usage: "config directory", EnvVars: []string{"CONFIG_DIR"}},
		},
		Before: func(c *cli.Context) error {
			return env.init(c.Bool("verbose"), c.String("database-url"), c.String("cache-dir"), c.String("config-dir"))
		},
		Commands: []*cli.Command{
			addCommand(env),
			getCommand(env),
			listCommand(env),
			findCommand(env, "search"),
			findCommand(env, "find"),
			compareCommand(env),
			deleteCommand(env),
			reindexCommand(env),
			cleanCommand(env),
			statsCommand(env),
			mergeCommand(env),
			importCommand(env),
			exportCommand(env),
			yaraCommand(env),
			nameCommand(env),
			tagCommand(env),
			collectionCommand(env),
			versionCommand(env),
			configCommand(env),
		},
	}
	return app
}

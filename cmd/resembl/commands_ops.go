package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func reindexCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "reindex",
		Usage: "recompute every snippet's MinHash and rebuild the LSH cache",
		Action: func(c *cli.Context) error {
			return env.search.Reindex(c.Context)
		},
	}
}

func cleanCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "vacuum storage and discard the LSH cache",
		Action: func(c *cli.Context) error {
			return env.search.Clean(c.Context)
		},
	}
}

func statsCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "print corpus-wide summary statistics",
		Action: func(c *cli.Context) error {
			st, err := env.search.Stats(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "snippets: %d\nmean_token_count: %.2f\nvocabulary_size: %d\nmean_pairwise_jaccard: %.4f\n",
				st.NumSnippets, st.MeanTokenCount, st.VocabularySize, st.MeanPairwiseJaccard)
			return nil
		},
	}
}

func mergeCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "absorb every snippet from another storage backend",
		ArgsUsage: "<database-url>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return errMissingArg("database-url")
			}
			other, err := openBackend(c.Args().Get(0), env.cacheDir)
			if err != nil {
				return err
			}
			defer other.Close()
			return env.search.Merge(c.Context, other)
		},
	}
}

// importCommand and exportCommand are thin stubs: filesystem walking and
// the bulk file format are external collaborators outside the similarity
// engine's scope, not where this repository's engineering weight lives.
func importCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "bulk-add snippets from a directory (one file per snippet)",
		ArgsUsage: "<dir>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return errMissingArg("dir")
			}
			return importDir(c.Context, env, c.Args().Get(0))
		},
	}
}

func exportCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write every stored snippet to a directory, one file per checksum",
		ArgsUsage: "<dir>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return errMissingArg("dir")
			}
			return exportDir(c.Context, env, c.Args().Get(0))
		},
	}
}

func yaraCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "yara",
		Usage:     "emit a YARA rule stub matching a stored snippet's mnemonic sequence",
		ArgsUsage: "<ref>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return errMissingArg("ref")
			}
			sn, err := resolveChecksum(c.Context, env, c.Args().Get(0))
			if err != nil {
				return err
			}
			return emitYaraStub(os.Stdout, sn)
		},
	}
}

func versionCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the resembl version",
		Action: func(c *cli.Context) error {
			fmt.Fprintln(os.Stdout, appVersion)
			return nil
		},
	}
}

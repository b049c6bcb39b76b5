package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/maci0/resembl/internal/present"
	"github.com/maci0/resembl/internal/store"
)

func addCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "add a snippet under a name",
		ArgsUsage: "<name> <code|@file|->",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return errMissingArg("name and code")
			}
			name := c.Args().Get(0)
			code, err := codeFromArg(c.Args().Get(1))
			if err != nil {
				return err
			}
			res, err := env.search.Add(c.Context, name, code)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s %s\n", res.Outcome, checksumHex(res.Checksum))
			return nil
		},
	}
}

func getCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "print a stored snippet by checksum prefix or name",
		ArgsUsage: "<ref>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return errMissingArg("ref")
			}
			sn, err := resolveChecksum(c.Context, env, c.Args().Get(0))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "checksum: %s\nnames: %v\ntags: %v\ncollection: %s\n\n%s\n",
				checksumHex(sn.Checksum), sn.Names, sn.Tags, sn.CollectionRef, sn.Code)
			return nil
		},
	}
}

func listCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list every stored snippet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "collection", Usage: "restrict to snippets in this collection"},
		},
		Action: func(c *cli.Context) error {
			want := c.String("collection")
			var rows []present.Row
			err := env.backend.IterAll(c.Context, func(sn store.Snippet) error {
				if want != "" && sn.CollectionRef != want {
					return nil
				}
				rows = append(rows, present.Row{Checksum: checksumHex(sn.Checksum), Names: sn.Names})
				return nil
			})
			if err != nil {
				return err
			}
			return present.Write(os.Stdout, env.cfg.Format, rows)
		},
	}
}

func findCommand(env *appEnv, name string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     "find snippets similar to a reference or raw code",
		ArgsUsage: "<code|@file|-|ref>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "top-n", Usage: "maximum results", Value: 0},
			&cli.Float64Flag{Name: "threshold", Usage: "minimum Jaccard similarity", Value: -1},
			&cli.BoolFlag{Name: "raw", Usage: "treat the argument as raw code rather than a stored reference"},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return errMissingArg("query")
			}
			topN := c.Int("top-n")
			if topN <= 0 {
				topN = int(env.cfg.TopN)
			}
			threshold := c.Float64("threshold")
			if threshold < 0 {
				threshold = env.cfg.LSHThreshold
			}
			normalize := c.Bool("raw")
			query := c.Args().Get(0)
			if normalize {
				code, err := codeFromArg(query)
				if err != nil {
					return err
				}
				query = code
			}
			matches, err := env.search.Find(c.Context, query, topN, threshold, normalize)
			if err != nil {
				return err
			}
			rows := make([]present.Row, len(matches))
			for i, m := range matches {
				rows[i] = present.Row{
					Checksum:      checksumHex(m.Checksum),
					Names:         m.Names,
					Jaccard:       m.Jaccard,
					Levenshtein:   m.Levenshtein,
					Hybrid:        m.Hybrid,
					CFGSimilarity: m.CFGSimilarity,
					SharedTokens:  m.SharedTokens,
				}
			}
			return present.Write(os.Stdout, env.cfg.Format, rows)
		},
	}
}

func compareCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "compare two stored snippets",
		ArgsUsage: "<refA> <refB>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return errMissingArg("refA and refB")
			}
			res, err := env.search.Compare(c.Context, c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			row := present.Row{
				Jaccard:       res.Jaccard,
				Levenshtein:   res.Levenshtein,
				Hybrid:        res.Hybrid,
				CFGSimilarity: res.CFGSimilarity,
				SharedTokens:  res.SharedTokens,
			}
			return present.Write(os.Stdout, env.cfg.Format, []present.Row{row})
		},
	}
}

func deleteCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete a stored snippet",
		ArgsUsage: "<ref>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return errMissingArg("ref")
			}
			sn, err := resolveChecksum(c.Context, env, c.Args().Get(0))
			if err != nil {
				return err
			}
			if err := env.search.Delete(c.Context, sn.Checksum); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, checksumHex(sn.Checksum))
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"

	"github.com/maci0/resembl/internal/config"
	"github.com/maci0/resembl/internal/search"
)

func configCommand(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect and edit the configuration file",
		Subcommands: []*cli.Command{
			{
				Name: "list",
				Action: func(c *cli.Context) error {
					data, err := config.Marshal(env.cfg)
					if err != nil {
						return err
					}
					_, err = os.Stdout.Write(data)
					return err
				},
			},
			{
				Name:      "get",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return errMissingArg("key")
					}
					v, err := configGet(env.cfg, c.Args().Get(0))
					if err != nil {
						return err
					}
					fmt.Fprintln(os.Stdout, v)
					return nil
				},
			},
			{
				Name:      "set",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 2 {
						return errMissingArg("key and value")
					}
					return configSetAndSave(env, c.Args().Get(0), c.Args().Get(1))
				},
			},
			{
				Name:      "unset",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return errMissingArg("key")
					}
					return configUnsetAndSave(env, c.Args().Get(0))
				},
			},
			{
				Name: "path",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(os.Stdout, env.cfgPath)
					return nil
				},
			},
		},
	}
}

func configGet(cfg config.Config, key string) (string, error) {
	switch key {
	case "lsh_threshold":
		return strconv.FormatFloat(cfg.LSHThreshold, 'f', -1, 64), nil
	case "num_permutations":
		return strconv.FormatUint(uint64(cfg.NumPermutations), 10), nil
	case "top_n":
		return strconv.FormatUint(uint64(cfg.TopN), 10), nil
	case "ngram_size":
		return strconv.FormatUint(uint64(cfg.NgramSize), 10), nil
	case "jaccard_weight":
		return strconv.FormatFloat(cfg.JaccardWeight, 'f', -1, 64), nil
	case "format":
		return string(cfg.Format), nil
	default:
		return "", &config.ErrUnrecognizedKey{Key: key}
	}
}

// configSetAndSave re-parses the config file as a raw TOML map, applies one
// key's new value, validates the result through config.Parse, and persists
// it atomically.
func configSetAndSave(env *appEnv, key, value string) error {
	raw, err := loadRawConfig(env.cfgPath)
	if err != nil {
		return err
	}
	switch key {
	case "lsh_threshold", "jaccard_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a float", search.ErrBadInput, key)
		}
		raw[key] = f
	case "num_permutations", "top_n", "ngram_size":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %s must be an unsigned integer", search.ErrBadInput, key)
		}
		raw[key] = n
	case "format":
		raw[key] = value
	default:
		return &config.ErrUnrecognizedKey{Key: key}
	}
	return saveRawConfig(env, raw)
}

func configUnsetAndSave(env *appEnv, key string) error {
	raw, err := loadRawConfig(env.cfgPath)
	if err != nil {
		return err
	}
	delete(raw, key)
	return saveRawConfig(env, raw)
}

func loadRawConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing toml: %w", err)
	}
	return raw, nil
}

func saveRawConfig(env *appEnv, raw map[string]any) error {
	data, err := toml.Marshal(raw)
	if err != nil {
		return err
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(env.cfgPath), 0o755); err != nil {
		return err
	}
	tmp := env.cfgPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, env.cfgPath); err != nil {
		os.Remove(tmp)
		return err
	}
	env.cfg = cfg
	return nil
}

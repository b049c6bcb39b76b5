// Package config loads the enumerated, immutable Config record from TOML.
// There is no ambient singleton: a Config value is produced once and
// threaded explicitly from there on.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Format is the output rendering format for CLI presentation.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// Config is the full enumerated configuration record. Every
// recognised key has a field here; unrecognised TOML keys are a load error.
type Config struct {
	LSHThreshold    float64 `toml:"lsh_threshold"`
	NumPermutations uint32  `toml:"num_permutations"`
	TopN            uint32  `toml:"top_n"`
	NgramSize       uint32  `toml:"ngram_size"`
	JaccardWeight   float64 `toml:"jaccard_weight"`
	Format          Format  `toml:"format"`
}

// Default returns the documented defaults: 0.5, 128, 5, 3, 0.4,
// table.
func Default() Config {
	return Config{
		LSHThreshold:    0.5,
		NumPermutations: 128,
		TopN:            5,
		NgramSize:       3,
		JaccardWeight:   0.4,
		Format:          FormatTable,
	}
}

// ErrUnrecognizedKey is returned by Load when the TOML document contains a
// key outside the enumerated set.
type ErrUnrecognizedKey struct {
	Key string
}

func (e *ErrUnrecognizedKey) Error() string {
	return fmt.Sprintf("config: unrecognized key %q", e.Key)
}

// ErrInvalidValue is returned when a recognised key holds a value outside
// its documented domain.
type ErrInvalidValue struct {
	Key    string
	Reason string
}

func (e *ErrInvalidValue) Error() string {
	return fmt.Sprintf("config: invalid value for %q: %s", e.Key, e.Reason)
}

// Dir resolves the config directory: CONFIG_DIR if set, else the OS user
// config directory joined with "resembl".
func Dir() (string, error) {
	if v := os.Getenv("CONFIG_DIR"); v != "" {
		return v, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "resembl"), nil
}

// Path is the config file within Dir().
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads and validates the config file at path. A missing file yields
// Default() with no error, matching a fresh installation.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	return Parse(data)
}

// Parse validates and decodes a TOML document into a Config seeded with
// Default() values, rejecting any key outside the enumerated set.
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("config: parsing toml: %w", err)
	}
	for key := range raw {
		if !recognizedKeys[key] {
			return Config{}, &ErrUnrecognizedKey{Key: key}
		}
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var recognizedKeys = map[string]bool{
	"lsh_threshold":    true,
	"num_permutations": true,
	"top_n":            true,
	"ngram_size":       true,
	"jaccard_weight":   true,
	"format":           true,
}

// Validate checks every field against its documented domain.
func (c Config) Validate() error {
	if c.LSHThreshold < 0 || c.LSHThreshold > 1 {
		return &ErrInvalidValue{Key: "lsh_threshold", Reason: "must be in [0,1]"}
	}
	if c.NumPermutations == 0 {
		return &ErrInvalidValue{Key: "num_permutations", Reason: "must be >= 1"}
	}
	if c.TopN < 1 {
		return &ErrInvalidValue{Key: "top_n", Reason: "must be >= 1"}
	}
	if c.NgramSize < 1 {
		return &ErrInvalidValue{Key: "ngram_size", Reason: "must be >= 1"}
	}
	if c.JaccardWeight < 0 || c.JaccardWeight > 1 {
		return &ErrInvalidValue{Key: "jaccard_weight", Reason: "must be in [0,1]"}
	}
	switch c.Format {
	case FormatTable, FormatJSON, FormatCSV:
	default:
		return &ErrInvalidValue{Key: "format", Reason: "must be one of table, json, csv"}
	}
	return nil
}

// Marshal serializes cfg back to TOML, for `config list`.
func Marshal(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

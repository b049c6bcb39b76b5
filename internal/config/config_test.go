package config

import (
	"errors"
	"testing"
)

func TestDefaultsMatchSpec(t *testing.T) {
	d := Default()
	if d.LSHThreshold != 0.5 || d.NumPermutations != 128 || d.TopN != 5 ||
		d.NgramSize != 3 || d.JaccardWeight != 0.4 || d.Format != FormatTable {
		t.Fatalf("defaults = %+v, mismatch with spec", d)
	}
}

func TestParseRejectsUnrecognizedKey(t *testing.T) {
	_, err := Parse([]byte("bogus_key = 1\n"))
	var target *ErrUnrecognizedKey
	if !errors.As(err, &target) {
		t.Fatalf("err = %v, want ErrUnrecognizedKey", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("top_n = 10\nformat = \"json\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.TopN != 10 || cfg.Format != FormatJSON {
		t.Fatalf("cfg = %+v, want top_n=10 format=json", cfg)
	}
	if cfg.LSHThreshold != 0.5 {
		t.Fatalf("unset key should keep default, got %v", cfg.LSHThreshold)
	}
}

func TestParseRejectsOutOfRangeThreshold(t *testing.T) {
	_, err := Parse([]byte("lsh_threshold = 1.5\n"))
	var target *ErrInvalidValue
	if !errors.As(err, &target) {
		t.Fatalf("err = %v, want ErrInvalidValue", err)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

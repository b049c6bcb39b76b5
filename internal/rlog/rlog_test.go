package rlog

import (
	"path/filepath"
	"testing"
)

func TestNewJSONLogger(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer logger.Sync()
	logger.Info("hello")
}

func TestNewVerboseWithLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resembl.log")
	logger, err := New(Options{Verbose: true, LogFile: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer logger.Sync()
	logger.Debug("debug message")
}

func TestNop(t *testing.T) {
	if Nop() == nil {
		t.Fatal("Nop() returned nil")
	}
}

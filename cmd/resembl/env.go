package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/maci0/resembl/internal/config"
	"github.com/maci0/resembl/internal/rlog"
	"github.com/maci0/resembl/internal/search"
	"github.com/maci0/resembl/internal/store"
	"github.com/maci0/resembl/internal/store/remote"
	"github.com/maci0/resembl/internal/store/sqlite"
)

// appEnv holds the shared state built once in the App's Before hook and
// used by every command's Action. It is not a package-level singleton: a
// fresh one is constructed per process in main.
type appEnv struct {
	cfg      config.Config
	cfgPath  string
	backend  store.Backend
	search   *search.Context
	logger   *zap.Logger
	cacheDir string
}

func newAppEnv() *appEnv {
	return &appEnv{}
}

// init loads configuration, opens the storage backend, and wires the
// orchestrator Context. Called from the App's Before hook once global flags
// have been parsed.
func (e *appEnv) init(verbose bool, databaseURL, cacheDir, configDir string) error {
	cfgPath, err := resolveConfigPath(configDir)
	if err != nil {
		return fmt.Errorf("%w: resolving config path: %v", search.ErrBadInput, err)
	}
	e.cfgPath = cfgPath

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	e.cfg = cfg

	logger, err := rlog.New(rlog.Options{Verbose: verbose})
	if err != nil {
		return err
	}
	e.logger = logger

	if cacheDir == "" {
		cacheDir = os.Getenv("CACHE_DIR")
	}
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return err
		}
		cacheDir = filepath.Join(base, "resembl")
	}
	e.cacheDir = cacheDir

	backend, err := openBackend(databaseURL, cacheDir)
	if err != nil {
		return err
	}
	e.backend = backend

	sc, err := search.NewContext(cfg, backend, logger, cacheDir, 0)
	if err != nil {
		return err
	}
	e.search = sc
	return nil
}

func resolveConfigPath(configDir string) (string, error) {
	if configDir != "" {
		return filepath.Join(configDir, "config.toml"), nil
	}
	return config.Path()
}

// openBackend dispatches on databaseURL's scheme: http(s):// selects the
// HTTP-backed remote.Client, anything else (including empty, which falls
// back to a default path under cacheDir) selects the local sqlite.Store.
func openBackend(databaseURL, cacheDir string) (store.Backend, error) {
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return sqlite.Open(filepath.Join(cacheDir, "resembl.db"))
	}
	u, err := url.Parse(databaseURL)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return remote.New(databaseURL), nil
	}
	path := databaseURL
	if u != nil && u.Scheme == "sqlite" {
		path = u.Opaque
		if path == "" {
			path = u.Path
		}
	}
	return sqlite.Open(path)
}

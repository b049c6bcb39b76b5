package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/maci0/resembl/internal/search"
	"github.com/maci0/resembl/internal/store"
)

// importDir is the external collaborator behind the `import` command:
// walking a directory is a filesystem concern outside the similarity
// engine's scope, so this stays a thin driver over
// search.Context.AddBatch rather than a component with its own design
// weight.
func importDir(ctx context.Context, env *appEnv, dir string) error {
	var items []search.BatchItem
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		items = append(items, search.BatchItem{Name: name, Code: string(data)})
		return nil
	})
	if err != nil {
		return err
	}
	_, err = env.search.AddBatch(ctx, items)
	return err
}

// exportDir writes every stored snippet's code to <dir>/<checksum hex>.asm.
func exportDir(ctx context.Context, env *appEnv, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return env.backend.IterAll(ctx, func(sn store.Snippet) error {
		path := filepath.Join(dir, checksumHex(sn.Checksum)+".asm")
		return os.WriteFile(path, []byte(sn.Code), 0o644)
	})
}

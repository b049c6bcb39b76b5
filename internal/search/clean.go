package search

import (
	"context"
	"os"
)

// Clean vacuums the storage backend and discards the on-disk LSH cache,
// forcing the next operation to rebuild it from scratch.
func (c *Context) Clean(ctx context.Context) error {
	if err := withRetry(ctx, func() error { return c.Backend.Vacuum(ctx) }); err != nil {
		return err
	}
	if err := os.Remove(c.cachePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	c.index = nil
	c.cache.Purge()
	return nil
}

package search

import (
	"context"

	"github.com/maci0/resembl/internal/store"
)

// Merge absorbs every snippet from other into this Context's backend
// (unioning names and tags, logging rebinds) and invalidates the in-memory
// index and cache so the next operation rebuilds them against the merged
// contents.
func (c *Context) Merge(ctx context.Context, other store.Backend) error {
	if err := withRetry(ctx, func() error { return c.Backend.Merge(ctx, other) }); err != nil {
		return err
	}
	c.index = nil
	c.cache.Purge()
	return nil
}

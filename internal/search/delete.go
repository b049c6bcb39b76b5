package search

import (
	"context"

	"github.com/maci0/resembl/internal/lsh"
	"github.com/maci0/resembl/internal/store"
)

// Delete removes a snippet from storage and drops it from the in-memory LSH
// index and snippet cache. It does not rewrite the on-disk cache file; the
// next EnsureIndex call will notice the fingerprint mismatch and rebuild.
func (c *Context) Delete(ctx context.Context, checksum store.Checksum) error {
	if err := withRetry(ctx, func() error { return c.Backend.Delete(ctx, checksum) }); err != nil {
		return err
	}
	if c.index != nil {
		c.index.Remove(lsh.Checksum(checksum))
	}
	c.invalidateSnippet(checksum)
	return nil
}

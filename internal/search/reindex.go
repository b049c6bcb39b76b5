package search

import (
	"context"

	"github.com/maci0/resembl/internal/lsh"
	"github.com/maci0/resembl/internal/store"
)

// Reindex recomputes every stored snippet's MinHash signature under the
// Context's current parameters, persists the new signatures, and rebuilds
// and re-persists the LSH cache from scratch. Use this after changing
// num_permutations or ngram_size, which makes previously stored signatures
// incompatible with the current index.
func (c *Context) Reindex(ctx context.Context) error {
	want := c.indexParams()
	idx := lsh.New(want, c.Config.LSHThreshold)

	var checksums []store.Checksum
	var codes []string
	if err := c.Backend.IterAll(ctx, func(sn store.Snippet) error {
		checksums = append(checksums, sn.Checksum)
		codes = append(codes, sn.Code)
		return nil
	}); err != nil {
		return err
	}

	sigs, err := c.ComputeMinHashes(ctx, codes)
	if err != nil {
		return err
	}

	for i, cs := range checksums {
		serialized := serializeMinHash(sigs[i])
		if err := withRetry(ctx, func() error {
			return c.Backend.UpdateMinHash(ctx, cs, serialized)
		}); err != nil {
			return err
		}
		idx.Insert(uint32(i), lsh.Checksum(cs), sigs[i])
	}

	fl, err := lsh.Lock(c.CacheDir)
	if err != nil {
		return err
	}
	defer fl.Unlock()

	fp, err := c.fingerprint(ctx, want)
	if err != nil {
		return err
	}
	if err := lsh.Save(c.cachePath(), idx, fp); err != nil {
		return err
	}

	c.index = idx
	c.cache.Purge()
	return nil
}

package search

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/maci0/resembl/internal/minhash"
)

// ComputeMinHashes runs the tokenize/shingle/minhash pipeline over codes
// concurrently across a bounded worker pool, never touching storage or the
// index — callers persist the results themselves. The returned slice is
// ordered to match codes.
func (c *Context) ComputeMinHashes(ctx context.Context, codes []string) ([]minhash.Signature, error) {
	out := make([]minhash.Signature, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	workers := int64(runtime.GOMAXPROCS(0))
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(workers)
	g, gctx := errgroup.WithContext(ctx)

	for i, code := range codes {
		i, code := i, code
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			out[i] = c.computeSignature(code)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

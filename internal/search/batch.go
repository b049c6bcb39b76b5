package search

import (
	"context"
	"errors"

	"github.com/maci0/resembl/internal/asmtoken"
	"github.com/maci0/resembl/internal/lsh"
	"github.com/maci0/resembl/internal/store"
)

// BatchItem is one name/code pair submitted to AddBatch.
type BatchItem struct {
	Name string
	Code string
}

// AddBatch computes every item's MinHash signature concurrently via
// ComputeMinHashes, then upserts them one at a time (storage and the index
// are not safe for concurrent mutation). This is the entry point bulk
// import drives, keeping the worker pool inside the orchestrator rather
// than duplicated at the CLI layer.
func (c *Context) AddBatch(ctx context.Context, items []BatchItem) ([]AddResult, error) {
	codes := make([]string, len(items))
	for i, it := range items {
		codes[i] = it.Code
	}
	sigs, err := c.ComputeMinHashes(ctx, codes)
	if err != nil {
		return nil, err
	}

	idx, err := c.Index(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]AddResult, len(items))
	for i, it := range items {
		checksum := store.Checksum(asmtoken.ChecksumBytes(it.Code))

		prior, priorErr := c.Backend.GetByName(ctx, it.Name)
		rebinding := priorErr == nil && prior.Checksum != checksum
		if priorErr != nil && !errors.Is(priorErr, store.ErrNotFound) {
			return nil, priorErr
		}
		_, existedErr := c.Backend.GetByChecksum(ctx, checksum)
		existed := existedErr == nil

		var result store.UpsertResult
		err := withRetry(ctx, func() error {
			var uerr error
			result, uerr = store.RebindOrAdopt(ctx, c.Backend, it.Name, store.Snippet{
				Checksum: checksum,
				Code:     it.Code,
				MinHash:  serializeMinHash(sigs[i]),
			})
			return uerr
		})
		if err != nil {
			return nil, err
		}

		if !existed {
			idx.Insert(idx.AllocateID(), lsh.Checksum(checksum), sigs[i])
		}
		if rebinding && len(prior.Names) <= 1 {
			idx.Remove(lsh.Checksum(prior.Checksum))
			c.invalidateSnippet(prior.Checksum)
		}
		c.invalidateSnippet(checksum)
		results[i] = AddResult{Checksum: checksum, Outcome: result}
	}
	return results, nil
}

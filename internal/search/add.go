package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/maci0/resembl/internal/asmtoken"
	"github.com/maci0/resembl/internal/lsh"
	"github.com/maci0/resembl/internal/store"
)

// AddResult reports what Add did: whether a new snippet row was created or
// an existing one picked up a new alias (including by rebinding the name
// off whatever it was previously bound to), plus its checksum.
type AddResult struct {
	Checksum store.Checksum
	Outcome  store.UpsertResult
}

// Add normalizes code, computes its checksum and MinHash signature, and
// binds it under name. If name is already bound to a different checksum,
// the name is rebound onto this snippet (via store.RebindOrAdopt) and the
// move is logged as a store.SnippetVersion, rather than failing with
// ErrAlreadyExists.
func (c *Context) Add(ctx context.Context, name, code string) (AddResult, error) {
	if name == "" {
		return AddResult{}, fmt.Errorf("%w: name must not be empty", ErrBadInput)
	}

	checksum := store.Checksum(asmtoken.ChecksumBytes(code))
	sig := c.computeSignature(code)

	prior, priorErr := c.Backend.GetByName(ctx, name)
	rebinding := priorErr == nil && prior.Checksum != checksum
	if priorErr != nil && !errors.Is(priorErr, store.ErrNotFound) {
		return AddResult{}, priorErr
	}
	_, existedErr := c.Backend.GetByChecksum(ctx, checksum)
	existed := existedErr == nil

	var result store.UpsertResult
	err := withRetry(ctx, func() error {
		var uerr error
		result, uerr = store.RebindOrAdopt(ctx, c.Backend, name, store.Snippet{
			Checksum: checksum,
			Code:     code,
			MinHash:  serializeMinHash(sig),
		})
		return uerr
	})
	if err != nil {
		return AddResult{}, err
	}

	idx, err := c.Index(ctx)
	if err != nil {
		return AddResult{}, err
	}
	if !existed {
		idx.Insert(idx.AllocateID(), lsh.Checksum(checksum), sig)
	}
	if rebinding && len(prior.Names) <= 1 {
		idx.Remove(lsh.Checksum(prior.Checksum))
		c.invalidateSnippet(prior.Checksum)
	}
	c.invalidateSnippet(checksum)

	return AddResult{Checksum: checksum, Outcome: result}, nil
}

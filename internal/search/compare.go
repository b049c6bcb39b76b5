package search

import (
	"context"

	"github.com/maci0/resembl/internal/score"
)

// Compare resolves two references (checksum prefix or bound name) and
// returns their full similarity result.
func (c *Context) Compare(ctx context.Context, aRef, bRef string) (score.Result, error) {
	a, err := c.resolveRef(ctx, aRef)
	if err != nil {
		return score.Result{}, err
	}
	b, err := c.resolveRef(ctx, bRef)
	if err != nil {
		return score.Result{}, err
	}
	aSig, err := minhashFromBytes(a.MinHash, int(c.Config.NumPermutations))
	if err != nil {
		return score.Result{}, err
	}
	bSig, err := minhashFromBytes(b.MinHash, int(c.Config.NumPermutations))
	if err != nil {
		return score.Result{}, err
	}
	return score.CompareWeighted(a.Code, aSig, b.Code, bSig, c.Config.JaccardWeight), nil
}

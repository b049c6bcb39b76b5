package search

import (
	"github.com/maci0/resembl/internal/asmtoken"
	"github.com/maci0/resembl/internal/minhash"
	"github.com/maci0/resembl/internal/shingle"
)

// computeSignature runs the full tokenize -> shingle -> minhash pipeline
// over code under the Context's current parameters.
func (c *Context) computeSignature(code string) minhash.Signature {
	toks := asmtoken.Tokenize(code, true)
	shingles := shingle.Shingles(toks, int(c.Config.NgramSize))
	return minhash.New(shingles, int(c.Config.NumPermutations))
}

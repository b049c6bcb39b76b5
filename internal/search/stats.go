package search

import (
	"context"
	"math/rand"

	"github.com/maci0/resembl/internal/asmtoken"
	"github.com/maci0/resembl/internal/minhash"
	"github.com/maci0/resembl/internal/store"
)

// statsSampleSize bounds the number of pairs drawn when estimating mean
// pairwise Jaccard similarity across the whole corpus, which is otherwise
// quadratic in the snippet count.
const statsSampleSize = 256

// statsSampleSeed is fixed so two runs against the same corpus report the
// same mean pairwise Jaccard estimate.
const statsSampleSeed = 0x5EED5EED

// Stats summarizes the corpus currently in storage.
type Stats struct {
	NumSnippets         int
	MeanTokenCount      float64
	VocabularySize      int
	MeanPairwiseJaccard float64
}

// Stats computes corpus-wide summary statistics. Mean pairwise Jaccard is
// estimated from a deterministic sample of at most statsSampleSize pairs
// rather than every pair, which is infeasible for large corpora.
func (c *Context) Stats(ctx context.Context) (Stats, error) {
	type entry struct {
		checksum store.Checksum
		sig      minhash.Signature
	}
	var entries []entry
	vocab := make(map[string]struct{})
	var totalTokens int64

	err := c.Backend.IterAll(ctx, func(sn store.Snippet) error {
		toks := asmtoken.Tokenize(sn.Code, false)
		totalTokens += int64(len(toks))
		for _, t := range asmtoken.Tokenize(sn.Code, true) {
			vocab[t.Text] = struct{}{}
		}
		sig, err := minhashFromBytes(sn.MinHash, int(c.Config.NumPermutations))
		if err != nil {
			return nil
		}
		entries = append(entries, entry{checksum: sn.Checksum, sig: sig})
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		NumSnippets:    len(entries),
		VocabularySize: len(vocab),
	}
	if len(entries) > 0 {
		st.MeanTokenCount = float64(totalTokens) / float64(len(entries))
	}
	if len(entries) >= 2 {
		rng := rand.New(rand.NewSource(statsSampleSeed))
		var sum float64
		counted := 0
		for attempt := 0; attempt < statsSampleSize; attempt++ {
			i := rng.Intn(len(entries))
			j := rng.Intn(len(entries))
			if i == j {
				continue
			}
			sum += minhash.EstimateJaccard(entries[i].sig, entries[j].sig)
			counted++
		}
		if counted > 0 {
			st.MeanPairwiseJaccard = sum / float64(counted)
		}
	}
	return st, nil
}

package search

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/maci0/resembl/internal/minhash"
	"github.com/maci0/resembl/internal/score"
	"github.com/maci0/resembl/internal/store"
)

// Match is one ranked result of Find.
type Match struct {
	Checksum store.Checksum
	Names    []string
	score.Result
}

// Find locates snippets similar to query. When normalizeQuery is true, query
// is raw assembly text run through the same tokenize/shingle/minhash
// pipeline used by Add. When false, query is instead a checksum prefix or
// bound name of an already-stored snippet, and its stored signature and
// code are reused verbatim rather than recomputed — useful for "find things
// like this one I already added" without retyping the snippet.
//
// Results below the Jaccard threshold are discarded; survivors are ordered
// by hybrid score descending, then Levenshtein ratio descending, then
// checksum ascending, and truncated to topN.
func (c *Context) Find(ctx context.Context, query string, topN int, threshold float64, normalizeQuery bool) ([]Match, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be >= 1", ErrBadInput)
	}

	var queryCode string
	var querySig minhash.Signature
	if normalizeQuery {
		queryCode = query
		querySig = c.computeSignature(query)
	} else {
		sn, err := c.resolveRef(ctx, query)
		if err != nil {
			return nil, err
		}
		queryCode = sn.Code
		sig, err := minhashFromBytes(sn.MinHash, int(c.Config.NumPermutations))
		if err != nil {
			return nil, err
		}
		querySig = sig
	}

	idx, err := c.Index(ctx)
	if err != nil {
		return nil, err
	}
	candidates := idx.Query(querySig)

	matches := make([]Match, 0, len(candidates))
	for _, lcs := range candidates {
		cs := store.Checksum(lcs)
		sn, err := c.getSnippet(ctx, cs)
		if err != nil {
			continue
		}
		candSig, ok := idx.Signature(lcs)
		if !ok {
			continue
		}
		res := score.CompareWeighted(queryCode, querySig, sn.Code, candSig, c.Config.JaccardWeight)
		if res.Jaccard < threshold {
			continue
		}
		matches = append(matches, Match{Checksum: cs, Names: sn.Names, Result: res})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Hybrid != matches[j].Hybrid {
			return matches[i].Hybrid > matches[j].Hybrid
		}
		if matches[i].Levenshtein != matches[j].Levenshtein {
			return matches[i].Levenshtein > matches[j].Levenshtein
		}
		return bytes.Compare(matches[i].Checksum[:], matches[j].Checksum[:]) < 0
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches, nil
}

// resolveRef resolves a checksum prefix (hex) or a bound name to its
// Snippet, trying the checksum-prefix form first.
func (c *Context) resolveRef(ctx context.Context, ref string) (store.Snippet, error) {
	sn, err := c.Backend.GetByChecksumPrefix(ctx, ref)
	if err == nil {
		return sn, nil
	}
	if Kind(err) == KindAmbiguous {
		return store.Snippet{}, err
	}
	return c.Backend.GetByName(ctx, ref)
}

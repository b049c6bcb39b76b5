// Package score computes pairwise similarity between two snippets: Jaccard
// (from MinHash signatures), Levenshtein ratio, a weighted hybrid of the
// two, CFG structural similarity, and a shared-token count.
package score

import (
	"github.com/agnivade/levenshtein"

	"github.com/maci0/resembl/internal/asmtoken"
	"github.com/maci0/resembl/internal/cfg"
	"github.com/maci0/resembl/internal/minhash"
)

// DefaultJaccardWeight is the default weighting of Jaccard against
// Levenshtein in the hybrid composite.
const DefaultJaccardWeight = 0.4

// Result is the output of Compare.
type Result struct {
	Jaccard       float64
	Levenshtein   float64
	Hybrid        float64
	CFGSimilarity float64
	SharedTokens  int
}

// LevenshteinRatio returns 100 * (1 - edit_distance(a, b) / max(len(a), len(b)))
// over the raw code strings. Two empty strings are identical (ratio 100).
func LevenshteinRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(dist)/float64(maxLen))
}

// Hybrid combines a MinHash-estimated Jaccard (0..1) and a Levenshtein ratio
// (0..100) into a single 0..100 score weighted by jaccardWeight.
func Hybrid(jaccard, levenshteinRatio, jaccardWeight float64) float64 {
	return 100 * (jaccardWeight*jaccard + (1-jaccardWeight)*levenshteinRatio/100)
}

// SharedTokens counts distinct normalized token texts present in both
// snippets.
func SharedTokens(aCode, bCode string) int {
	aSet := tokenTextSet(aCode)
	bSet := tokenTextSet(bCode)
	shared := 0
	for t := range aSet {
		if _, ok := bSet[t]; ok {
			shared++
		}
	}
	return shared
}

func tokenTextSet(code string) map[string]struct{} {
	toks := asmtoken.Tokenize(code, true)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t.Text] = struct{}{}
	}
	return set
}

// Compare computes the full similarity result for two snippets given their
// raw code and precomputed MinHash signatures, using the default Jaccard
// weight.
func Compare(aCode string, aSig minhash.Signature, bCode string, bSig minhash.Signature) Result {
	return CompareWeighted(aCode, aSig, bCode, bSig, DefaultJaccardWeight)
}

// CompareWeighted is Compare with an explicit Jaccard weight.
func CompareWeighted(aCode string, aSig minhash.Signature, bCode string, bSig minhash.Signature, jaccardWeight float64) Result {
	jaccard := minhash.EstimateJaccard(aSig, bSig)
	lev := LevenshteinRatio(aCode, bCode)
	hybrid := Hybrid(jaccard, lev, jaccardWeight)
	cfgSim := cfg.Similarity(cfg.Extract(aCode), cfg.Extract(bCode))
	shared := SharedTokens(aCode, bCode)

	return Result{
		Jaccard:       jaccard,
		Levenshtein:   lev,
		Hybrid:        hybrid,
		CFGSimilarity: cfgSim,
		SharedTokens:  shared,
	}
}

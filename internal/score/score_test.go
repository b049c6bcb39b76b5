package score

import (
	"testing"

	"github.com/maci0/resembl/internal/minhash"
	"github.com/maci0/resembl/internal/shingle"

	"github.com/maci0/resembl/internal/asmtoken"
)

func TestLevenshteinRatioIdentical(t *testing.T) {
	if r := LevenshteinRatio("mov eax, ebx", "mov eax, ebx"); r != 100 {
		t.Fatalf("ratio = %v, want 100", r)
	}
}

func TestLevenshteinRatioBothEmpty(t *testing.T) {
	if r := LevenshteinRatio("", ""); r != 100 {
		t.Fatalf("ratio = %v, want 100", r)
	}
}

func TestHybridWeighting(t *testing.T) {
	h := Hybrid(1.0, 100, 0.4)
	if h != 100 {
		t.Fatalf("hybrid of perfect match = %v, want 100", h)
	}
	h = Hybrid(0, 0, 0.4)
	if h != 0 {
		t.Fatalf("hybrid of no match = %v, want 0", h)
	}
}

func TestSharedTokensCountsDistinctOnly(t *testing.T) {
	a := "mov eax, ebx\nmov eax, ebx\n"
	b := "mov ecx, edx\n"
	if n := SharedTokens(a, b); n != 3 {
		t.Fatalf("shared tokens = %d, want 3 (MOV, REG, ',')", n)
	}
}

func sigFor(code string) minhash.Signature {
	toks := asmtoken.Tokenize(code, true)
	return minhash.New(shingle.Shingles(toks, shingle.DefaultSize), 32)
}

func TestCompareIdenticalSnippets(t *testing.T) {
	code := "mov eax, ebx\nadd eax, 1\nret\n"
	sig := sigFor(code)
	r := Compare(code, sig, code, sig)
	if r.Jaccard != 1 {
		t.Fatalf("jaccard = %v, want 1", r.Jaccard)
	}
	if r.Levenshtein != 100 {
		t.Fatalf("levenshtein = %v, want 100", r.Levenshtein)
	}
	if r.Hybrid != 100 {
		t.Fatalf("hybrid = %v, want 100", r.Hybrid)
	}
	if r.CFGSimilarity != 1 {
		t.Fatalf("cfg similarity = %v, want 1", r.CFGSimilarity)
	}
}

package shingle_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/maci0/resembl/internal/asmtoken"
	"github.com/maci0/resembl/internal/shingle"
)

func genCode(t *rapid.T) string {
	return rapid.StringMatching(`[a-z]{2,6}( (eax|ebx|1|\[eax\]))*\n[a-z]{2,6}( (eax|ebx|2|\[ebx\]))*`).Draw(t, "code")
}

// TestShinglesCount checks the documented count relationship between a
// token stream's length and the number of shingles it produces: exactly
// one shingle when shorter than k, else len(toks)-k+1.
func TestShinglesCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := genCode(t)
		k := rapid.IntRange(1, 5).Draw(t, "k")
		toks := asmtoken.Tokenize(code, true)

		shingles := shingle.Shingles(toks, k)

		switch {
		case len(toks) == 0:
			if shingles != nil {
				t.Fatalf("expected nil shingles for empty token stream, got %v", shingles)
			}
		case len(toks) < k:
			if len(shingles) != 1 {
				t.Fatalf("expected 1 shingle for %d toks < k=%d, got %d", len(toks), k, len(shingles))
			}
		default:
			want := len(toks) - k + 1
			if len(shingles) != want {
				t.Fatalf("expected %d shingles for %d toks, k=%d, got %d", want, len(toks), k, len(shingles))
			}
		}
		for _, w := range shingles {
			if w.Weight < 1 || w.Weight > 3 {
				t.Fatalf("weight %d out of documented range [1,3]", w.Weight)
			}
		}
	})
}

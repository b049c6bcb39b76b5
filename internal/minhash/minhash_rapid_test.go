package minhash_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/maci0/resembl/internal/asmtoken"
	"github.com/maci0/resembl/internal/minhash"
	"github.com/maci0/resembl/internal/shingle"
)

func genSignature(t *rapid.T) (minhash.Signature, int) {
	code := rapid.StringMatching(`[a-z]{2,6}( (eax|ebx|1|\[eax\]))*\n[a-z]{2,6}( (eax|ebx|2|\[ebx\]))*`).Draw(t, "code")
	p := rapid.IntRange(1, 32).Draw(t, "p")
	toks := asmtoken.Tokenize(code, true)
	sigs := shingle.Shingles(toks, shingle.DefaultSize)
	return minhash.New(sigs, p), p
}

// TestNewDeterministic checks that the same shingle multiset and width
// always produce the identical signature: permutation parameters are
// derived from a fixed seed, not process-local randomness.
func TestNewDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := rapid.StringMatching(`[a-z]{2,6}( (eax|ebx|1))*\n[a-z]{2,6}( (eax|ebx|2))*`).Draw(t, "code")
		p := rapid.IntRange(1, 32).Draw(t, "p")
		toks := asmtoken.Tokenize(code, true)
		sigs := shingle.Shingles(toks, shingle.DefaultSize)

		a := minhash.New(sigs, p)
		b := minhash.New(sigs, p)
		if len(a) != len(b) {
			t.Fatalf("signature length mismatch: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("signature element %d differs across runs: %d vs %d", i, a[i], b[i])
			}
		}
	})
}

// TestSerializeParseRoundTrip checks that Serialize followed by Parse with
// the matching width recovers the original signature exactly.
func TestSerializeParseRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sig, p := genSignature(t)
		data := minhash.Serialize(sig)
		got, err := minhash.Parse(data, p)
		if err != nil {
			t.Fatalf("Parse failed on Serialize output: %v", err)
		}
		if len(got) != len(sig) {
			t.Fatalf("round-trip length mismatch: %d vs %d", len(got), len(sig))
		}
		for i := range sig {
			if got[i] != sig[i] {
				t.Fatalf("round-trip element %d differs: %d vs %d", i, got[i], sig[i])
			}
		}
	})
}

// Package shingle turns a token stream into a weighted multiset of
// contiguous n-grams.
package shingle

import (
	"strings"

	"github.com/maci0/resembl/internal/asmtoken"
)

// DefaultSize is the default shingle width k.
const DefaultSize = 3

// sep joins tokens inside one shingle. Token text is a fixed category
// keyword (REG, IMM, ...), an uppercased mnemonic, or a single punctuation
// character, so sep appears inside a token only when the input itself holds
// a U+001F byte, which the lexer passes through as a one-character token.
const sep = "\x1f"

// Weighted is one shingle plus its insertion weight in {1, 2, 3}.
type Weighted struct {
	Shingle string
	Weight  int
}

// Shingles produces the contiguous k-gram multiset of toks, weighted by
// weightOf. A token stream shorter than k produces a single shingle
// equal to the full sequence, with the default weight 2.
func Shingles(toks []asmtoken.Token, k int) []Weighted {
	if k < 1 {
		k = DefaultSize
	}
	if len(toks) == 0 {
		return nil
	}
	if len(toks) < k {
		return []Weighted{{Shingle: join(toks), Weight: 2}}
	}

	out := make([]Weighted, 0, len(toks)-k+1)
	for i := 0; i+k <= len(toks); i++ {
		window := toks[i : i+k]
		out = append(out, Weighted{
			Shingle: join(window),
			Weight:  weightOf(window),
		})
	}
	return out
}

func join(toks []asmtoken.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// weightOf implements the shingle weighting rule: 3 if every token names
// a rare instruction, 1 if every token names a common instruction, else 2.
func weightOf(window []asmtoken.Token) int {
	allRare, allCommon := true, true
	for _, t := range window {
		if t.Kind != asmtoken.KindMnemonic {
			allRare, allCommon = false, false
			break
		}
		if !asmtoken.IsRareInstruction(t.Text) {
			allRare = false
		}
		if !asmtoken.IsCommonInstruction(t.Text) {
			allCommon = false
		}
	}
	switch {
	case allRare:
		return 3
	case allCommon:
		return 1
	default:
		return 2
	}
}

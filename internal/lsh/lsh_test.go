package lsh

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/maci0/resembl/internal/minhash"
)

func TestChooseBandingFactorsPermutations(t *testing.T) {
	b, r := ChooseBanding(128, DefaultThreshold)
	if b*r != 128 {
		t.Fatalf("b*r = %d, want 128", b*r)
	}
}

func TestChooseBandingCurveNearTarget(t *testing.T) {
	b, r := ChooseBanding(128, 0.5)
	curve := sCurve(0.5, b, r)
	// The closest factorization of 128 at t=0.5 is b=32, r=4, whose curve
	// value is about 0.873.
	if math.Abs(curve-0.5) > 0.38 {
		t.Fatalf("banding (%d,%d) curve at threshold = %v, too far from 0.5", b, r, curve)
	}
}

func makeSig(vals ...uint64) minhash.Signature {
	return minhash.Signature(vals)
}

func TestInsertAndQueryFindsExactMatch(t *testing.T) {
	p := Params{Permutations: 4, NgramSize: 3, Bands: 2, Rows: 2}
	idx := New(p, DefaultThreshold)

	var cs Checksum
	cs[0] = 1
	sig := makeSig(10, 20, 30, 40)
	idx.Insert(0, cs, sig)

	results := idx.Query(sig)
	if len(results) != 1 || results[0] != cs {
		t.Fatalf("query for exact signature = %v, want [%v]", results, cs)
	}
}

func TestRemoveDropsFromBuckets(t *testing.T) {
	p := Params{Permutations: 4, NgramSize: 3, Bands: 2, Rows: 2}
	idx := New(p, DefaultThreshold)

	var cs Checksum
	cs[0] = 7
	sig := makeSig(1, 2, 3, 4)
	idx.Insert(0, cs, sig)
	idx.Remove(cs)

	if len(idx.Query(sig)) != 0 {
		t.Fatalf("query after remove should be empty")
	}
	if idx.Len() != 0 {
		t.Fatalf("index length after remove = %d, want 0", idx.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")

	p := Params{Permutations: 4, NgramSize: 3, Bands: 2, Rows: 2, Generalize: true}
	idx := New(p, DefaultThreshold)
	var cs1, cs2 Checksum
	cs1[0], cs2[0] = 1, 2
	idx.Insert(0, cs1, makeSig(1, 2, 3, 4))
	idx.Insert(1, cs2, makeSig(5, 6, 7, 8))

	if err := Save(path, idx, 0xABCD); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, fingerprint, err := Load(path, p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fingerprint != 0xABCD {
		t.Fatalf("fingerprint = %x, want abcd", fingerprint)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded length = %d, want 2", loaded.Len())
	}
	sig1, ok := loaded.Signature(cs1)
	if !ok || sig1[0] != 1 {
		t.Fatalf("loaded signature for cs1 = %v, ok=%v", sig1, ok)
	}
	results := loaded.Query(makeSig(1, 2, 3, 4))
	found := false
	for _, r := range results {
		if r == cs1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("query after round-trip did not find cs1, got %v", results)
	}
}

func TestLoadRejectsParamMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")

	p := Params{Permutations: 4, NgramSize: 3, Bands: 2, Rows: 2}
	idx := New(p, DefaultThreshold)
	if err := Save(path, idx, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := p
	want.Permutations = 8
	if _, _, err := Load(path, want); err != ErrParamsMismatch {
		t.Fatalf("Load with mismatched params err = %v, want ErrParamsMismatch", err)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")
	if err := os.WriteFile(path, []byte("not a cache file"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, _, err := Load(path, Params{}); err == nil {
		t.Fatalf("Load of garbage file should fail")
	}
}

// Package minhash computes fixed-width MinHash signatures over weighted
// shingle multisets for Jaccard-similarity estimation.
package minhash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/maci0/resembl/internal/shingle"
)

// DefaultPermutations is the default signature width P.
const DefaultPermutations = 128

// mersennePrime61 is M = 2^61 - 1, the fixed large prime modulus for the
// permutation hash family.
const mersennePrime61 = (1 << 61) - 1

// seed is the fixed, documented seed for the deterministic permutation
// parameter generator. Two runs against the
// same (tokens, k, P, seed) always produce bit-identical signatures because
// this constant never changes.
const seed uint64 = 0x9E3779B97F4A7C15

// Signature is a fixed-length MinHash fingerprint.
type Signature []uint64

// Magic for the standalone signature serialization format,
// distinct from the LSH on-disk cache file format.
const sigMagic uint32 = 0x484D4E52 // "RNMH" little-endian on disk

// New computes the MinHash signature of a weighted shingle multiset at p
// permutations. Weighted insertion is realised by inserting w distinct
// variants of each shingle (the shingle text concatenated with a counter in
// 0..w), since min is idempotent on duplicate elements and this amplifies a
// rare shingle's contribution to every permutation's minimum the same way w
// literal copies would.
func New(shingles []shingle.Weighted, p int) Signature {
	if p <= 0 {
		p = DefaultPermutations
	}
	a, b := permutationParams(p)

	sig := make(Signature, p)
	for i := range sig {
		sig[i] = ^uint64(0)
	}

	for _, sh := range shingles {
		w := sh.Weight
		if w < 1 {
			w = 1
		}
		for variant := 0; variant < w; variant++ {
			hx := hashElement(sh.Shingle, variant)
			for i := 0; i < p; i++ {
				h := permute(a[i], b[i], hx)
				if h < sig[i] {
					sig[i] = h
				}
			}
		}
	}
	return sig
}

// hashElement returns H(x) for shingle text s at weighted-insertion variant
// index v. Variant 0 is the shingle's own stable hash so
// weight-1 insertion matches hashing the shingle directly.
func hashElement(s string, v int) uint64 {
	if v == 0 {
		return xxhash.Sum64String(s)
	}
	return xxhash.Sum64String(s + "\x00" + strconv.Itoa(v))
}

// permute evaluates h_i(x) = (a*x + b) mod M.
func permute(a, b, x uint64) uint64 {
	hi, lo := bits.Mul64(a, x%mersennePrime61)
	// Reduce the 128-bit product mod the Mersenne prime 2^61-1 using the
	// standard Mersenne-modulus trick, then add b and reduce again.
	prod := mulMod61(hi, lo)
	sum := prod + b%mersennePrime61
	if sum >= mersennePrime61 {
		sum -= mersennePrime61
	}
	return sum
}

// mulMod61 reduces a 128-bit product (hi:lo) modulo 2^61-1.
func mulMod61(hi, lo uint64) uint64 {
	// (hi*2^64 + lo) mod (2^61-1). Since 2^64 = 8 * 2^61 = 8*(M+1) = 8M+8,
	// 2^64 mod M = 8. So the product mod M = (8*hi + lo) mod M, folded
	// until it fits below M.
	v := lo%mersennePrime61 + 8*(hi%mersennePrime61)
	for v >= mersennePrime61 {
		v -= mersennePrime61
	}
	return v
}

// permutationParams deterministically derives p pairs (a_i, b_i) in
// [1, M) x [0, M) from the fixed seed via a splitmix64 stream, so the
// permutation family itself never needs to be persisted.
func permutationParams(p int) (a, b []uint64) {
	a = make([]uint64, p)
	b = make([]uint64, p)
	s := seed
	next := func() uint64 {
		s += 0x9E3779B97F4A7C15
		z := s
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		return z
	}
	for i := 0; i < p; i++ {
		av := next() % (mersennePrime61 - 1)
		a[i] = av + 1 // a must be nonzero
		b[i] = next() % mersennePrime61
	}
	return a, b
}

// EstimateJaccard returns |{i : a[i] == b[i]}| / P.
func EstimateJaccard(a, b Signature) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}

// ErrIncompatibleWidth is returned by Parse when the encoded P does not
// match the caller's expectation.
var ErrIncompatibleWidth = errors.New("minhash: incompatible permutation width")

// Serialize packs sig as: 4-byte magic, 4-byte P, then P little-endian u64s.
func Serialize(sig Signature) []byte {
	buf := make([]byte, 8+8*len(sig))
	binary.LittleEndian.PutUint32(buf[0:4], sigMagic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(sig)))
	for i, v := range sig {
		binary.LittleEndian.PutUint64(buf[8+8*i:], v)
	}
	return buf
}

// Parse reverses Serialize. If wantP is nonzero, a decoded width other than
// wantP is ErrIncompatibleWidth.
func Parse(data []byte, wantP int) (Signature, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("minhash: truncated signature (%d bytes)", len(data))
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != sigMagic {
		return nil, fmt.Errorf("minhash: bad magic %x", magic)
	}
	p := int(binary.LittleEndian.Uint32(data[4:8]))
	if wantP != 0 && p != wantP {
		return nil, fmt.Errorf("%w: have %d want %d", ErrIncompatibleWidth, p, wantP)
	}
	if len(data) < 8+8*p {
		return nil, fmt.Errorf("minhash: truncated signature body")
	}
	sig := make(Signature, p)
	for i := range sig {
		sig[i] = binary.LittleEndian.Uint64(data[8+8*i:])
	}
	return sig, nil
}

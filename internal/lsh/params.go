// Package lsh implements a banded MinHash LSH index: in-memory banding and
// bucketing, plus the on-disk cache file format, atomic writes, and
// advisory-locked access.
package lsh

import "math"

// DefaultThreshold is the Jaccard similarity s at which the banding is
// tuned.
const DefaultThreshold = 0.5

// Params pins the parameters an index (and its cache file) were built with.
// A mismatch against the caller's current configuration means the cache is
// stale.
type Params struct {
	Permutations int // P
	NgramSize    int // k
	Bands        int // b
	Rows         int // r, b*r == P
	Generalize   bool
}

// ChooseBanding picks (b, r) with b*r == p minimizing the absolute
// difference between the S-curve 1-(1-s^r)^b evaluated at s=threshold and
// the target probability 0.5. Ties favor the
// factorization with the larger number of bands, since more bands (shorter
// rows) only ever widens recall.
func ChooseBanding(p int, threshold float64) (bands, rows int) {
	if p <= 0 {
		return 1, 1
	}
	bestDiff := math.MaxFloat64
	bestB, bestR := 1, p
	for r := 1; r <= p; r++ {
		if p%r != 0 {
			continue
		}
		b := p / r
		curve := sCurve(threshold, b, r)
		diff := math.Abs(curve - 0.5)
		if diff < bestDiff || (diff == bestDiff && b > bestB) {
			bestDiff = diff
			bestB, bestR = b, r
		}
	}
	return bestB, bestR
}

// sCurve evaluates 1-(1-s^r)^b, the probability that a pair at true Jaccard
// similarity s shares at least one band.
func sCurve(s float64, b, r int) float64 {
	return 1 - math.Pow(1-math.Pow(s, float64(r)), float64(b))
}

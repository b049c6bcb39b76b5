package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maci0/resembl/internal/lsh"
)

// TestFingerprintDistinguishesGeneralizeFlag guards against the Generalize
// flag byte being silently overwritten by an overlapping header field: two
// otherwise-identical Params that differ only in Generalize must hash to
// different fingerprints.
func TestFingerprintDistinguishesGeneralizeFlag(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)
	_, err := c.Add(ctx, "func_a", codeA)
	require.NoError(t, err)

	base := lsh.Params{Permutations: 32, NgramSize: 3, Bands: 8, Rows: 4}
	withGeneralize := base
	withGeneralize.Generalize = true

	fpOff, err := c.fingerprint(ctx, base)
	require.NoError(t, err)
	fpOn, err := c.fingerprint(ctx, withGeneralize)
	require.NoError(t, err)

	require.NotEqual(t, fpOff, fpOn)
}

package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maci0/resembl/internal/config"
	"github.com/maci0/resembl/internal/store"
	"github.com/maci0/resembl/internal/store/memstore"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	cfg := config.Default()
	cfg.NumPermutations = 32
	c, err := NewContext(cfg, memstore.New(), zap.NewNop(), t.TempDir(), 0)
	require.NoError(t, err)
	return c
}

const codeA = "mov eax, ebx\nadd eax, 1\nret\n"
const codeB = "mov eax, ebx\nadd eax, ebx\nsub eax, 1\nret\n"
const codeC = "vmcall\nsyscall\nret\n"

func TestAddCreatesThenAliases(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	r1, err := c.Add(ctx, "func_a", codeA)
	require.NoError(t, err)
	require.Equal(t, store.Created, r1.Outcome)

	r2, err := c.Add(ctx, "func_a_alias", codeA)
	require.NoError(t, err)
	require.Equal(t, r1.Checksum, r2.Checksum)
}

func TestAddRebindsNameOnCollisionWithDifferentCode(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	r1, err := c.Add(ctx, "func_a", codeA)
	require.NoError(t, err)

	// "func_a" was the only name on r1's snippet; re-adding it under codeB
	// must rebind the name onto codeB's checksum (not fail with
	// ErrAlreadyExists), log the move as a SnippetVersion, and drop r1's
	// now-nameless row entirely.
	r2, err := c.Add(ctx, "func_a", codeB)
	require.NoError(t, err)
	require.Equal(t, store.Aliased, r2.Outcome)
	require.NotEqual(t, r1.Checksum, r2.Checksum)

	_, err = c.Backend.GetByChecksum(ctx, r1.Checksum)
	require.ErrorIs(t, err, store.ErrNotFound)

	sn, err := c.Backend.GetByName(ctx, "func_a")
	require.NoError(t, err)
	require.Equal(t, r2.Checksum, sn.Checksum)

	matches, err := c.Find(ctx, codeB, 5, 0.0, true)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
}

func TestAddBatchRebindsNameOnCollisionWithDifferentCode(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	r1, err := c.Add(ctx, "func_a", codeA)
	require.NoError(t, err)

	results, err := c.AddBatch(ctx, []BatchItem{{Name: "func_a", Code: codeB}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, store.Aliased, results[0].Outcome)
	require.NotEqual(t, r1.Checksum, results[0].Checksum)

	_, err = c.Backend.GetByChecksum(ctx, r1.Checksum)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFindReturnsSimilarSnippets(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	_, err := c.Add(ctx, "func_a", codeA)
	require.NoError(t, err)
	_, err = c.Add(ctx, "func_b", codeB)
	require.NoError(t, err)
	_, err = c.Add(ctx, "func_c", codeC)
	require.NoError(t, err)

	matches, err := c.Find(ctx, codeA, 5, 0.0, true)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	var sawA, sawB bool
	for _, m := range matches {
		for _, n := range m.Names {
			if n == "func_a" {
				sawA = true
			}
			if n == "func_b" {
				sawB = true
			}
		}
	}
	require.True(t, sawA)
	_ = sawB
}

func TestCompareByName(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	_, err := c.Add(ctx, "func_a", codeA)
	require.NoError(t, err)
	_, err = c.Add(ctx, "func_b", codeB)
	require.NoError(t, err)

	res, err := c.Compare(ctx, "func_a", "func_b")
	require.NoError(t, err)
	require.Greater(t, res.Jaccard, 0.0)
}

func TestReindexRecomputesAndRebuildsCache(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	_, err := c.Add(ctx, "func_a", codeA)
	require.NoError(t, err)
	require.NoError(t, c.Reindex(ctx))

	matches, err := c.Find(ctx, codeA, 5, 0.0, true)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
}

func TestStatsReportsCounts(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	_, err := c.Add(ctx, "func_a", codeA)
	require.NoError(t, err)
	_, err = c.Add(ctx, "func_b", codeB)
	require.NoError(t, err)

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, st.NumSnippets)
	require.Greater(t, st.VocabularySize, 0)
	require.Greater(t, st.MeanTokenCount, 0.0)
}

func TestCleanRebuildsFromScratch(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	_, err := c.Add(ctx, "func_a", codeA)
	require.NoError(t, err)
	require.NoError(t, c.Clean(ctx))

	matches, err := c.Find(ctx, codeA, 5, 0.0, true)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
}

func TestMergeAbsorbsOtherBackend(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)
	_, err := c.Add(ctx, "func_a", codeA)
	require.NoError(t, err)

	other := memstore.New()
	otherCfg := config.Default()
	otherCfg.NumPermutations = 32
	oc, err := NewContext(otherCfg, other, zap.NewNop(), t.TempDir(), 0)
	require.NoError(t, err)
	_, err = oc.Add(ctx, "func_b", codeB)
	require.NoError(t, err)

	require.NoError(t, c.Merge(ctx, other))

	matches, err := c.Find(ctx, codeB, 5, 0.0, true)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
}

func TestComputeMinHashesPreservesOrder(t *testing.T) {
	ctx := context.Background()
	c := newTestContext(t)

	sigs, err := c.ComputeMinHashes(ctx, []string{codeA, codeB, codeC})
	require.NoError(t, err)
	require.Len(t, sigs, 3)
	for _, sig := range sigs {
		require.NotEmpty(t, sig)
	}
}

package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maci0/resembl/internal/store"
)

func TestKindClassifiesSentinels(t *testing.T) {
	require.Equal(t, KindNotFound, Kind(store.ErrNotFound))
	require.Equal(t, KindNotFound, Kind(fmt.Errorf("wrapped: %w", store.ErrNotFound)))
	require.Equal(t, KindAmbiguous, Kind(store.ErrAmbiguous))
	require.Equal(t, KindStaleIndex, Kind(ErrStaleIndex))
	require.Equal(t, KindBadInput, Kind(ErrBadInput))
	require.Equal(t, KindNone, Kind(nil))
	require.Equal(t, KindNone, Kind(fmt.Errorf("anything else")))
}

func TestExitCodeMapping(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 1, ExitCode(store.ErrNotFound))
	require.Equal(t, 1, ExitCode(ErrBadInput))
	require.Equal(t, 4, ExitCode(store.ErrPermanentStorage))
	require.Equal(t, 4, ExitCode(fmt.Errorf("unexpected")))
}

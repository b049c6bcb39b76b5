// Package search is the orchestrator: add, find, compare, reindex, clean,
// merge, stats, plus the bulk-import worker pool and the retry policy
// around transient storage failures.
package search

import (
	"context"
	"errors"

	"github.com/maci0/resembl/internal/lsh"
	"github.com/maci0/resembl/internal/store"
)

// ErrorKind is the closed enumeration of error categories surfaced at the
// orchestrator boundary.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNotFound
	KindAmbiguous
	KindAlreadyExists
	KindEmptyAliasSet
	KindStaleIndex
	KindCorruptCache
	KindTransientStorage
	KindPermanentStorage
	KindBadInput
)

// ErrStaleIndex: index parameters disagree with stored MinHashes; the
// caller must reindex.
var ErrStaleIndex = errors.New("search: stale index, reindex required")

// ErrBadInput: invalid config value, non-UTF-8 code, unsupported
// num_permutations, or similar caller error.
var ErrBadInput = errors.New("search: bad input")

// Kind classifies err into one of the nine documented kinds, for exit-code
// mapping at the CLI boundary. Unrecognized errors map to KindNone, which
// callers treat as "unexpected" (exit 4).
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, store.ErrAmbiguous):
		return KindAmbiguous
	case errors.Is(err, store.ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, store.ErrEmptyAliasSet):
		return KindEmptyAliasSet
	case errors.Is(err, ErrStaleIndex):
		return KindStaleIndex
	case errors.Is(err, lsh.ErrCorrupt):
		return KindCorruptCache
	case errors.Is(err, store.ErrTransientStorage):
		return KindTransientStorage
	case errors.Is(err, store.ErrPermanentStorage):
		return KindPermanentStorage
	case errors.Is(err, ErrBadInput):
		return KindBadInput
	default:
		return KindNone
	}
}

// ExitCode maps an error to the process exit code: 0 success, 1 user
// error, 2 integrity error (non-fatal), 3 cancelled, 4 unexpected.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 3
	}
	switch Kind(err) {
	case KindNotFound, KindAmbiguous, KindAlreadyExists, KindEmptyAliasSet, KindBadInput:
		return 1
	case KindCorruptCache:
		return 2
	case KindPermanentStorage:
		return 4
	default:
		return 4
	}
}

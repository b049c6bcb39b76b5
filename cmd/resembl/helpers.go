package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/maci0/resembl/internal/search"
	"github.com/maci0/resembl/internal/store"
)

// resolveChecksum resolves ref (a hex checksum prefix or a bound name) to a
// full Snippet, trying the checksum-prefix form first.
func resolveChecksum(ctx context.Context, e *appEnv, ref string) (store.Snippet, error) {
	sn, err := e.backend.GetByChecksumPrefix(ctx, ref)
	if err == nil {
		return sn, nil
	}
	if search.Kind(err) == search.KindAmbiguous {
		return store.Snippet{}, err
	}
	return e.backend.GetByName(ctx, ref)
}

// codeFromArg reads snippet source either from a literal argument, from a
// file when it is prefixed with '@', or from stdin when it is "-".
func codeFromArg(arg string) (string, error) {
	switch {
	case arg == "-":
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	case len(arg) > 1 && arg[0] == '@':
		b, err := os.ReadFile(arg[1:])
		return string(b), err
	default:
		return arg, nil
	}
}

func checksumHex(cs store.Checksum) string {
	return hex.EncodeToString(cs[:])
}

func errMissingArg(name string) error {
	return fmt.Errorf("%w: missing required argument %q", search.ErrBadInput, name)
}

package search

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/maci0/resembl/internal/lsh"
	"github.com/maci0/resembl/internal/minhash"
	"github.com/maci0/resembl/internal/store"
)

// fingerprint hashes the index parameters together with the backend's full
// checksum set, so a cache file can be trusted only when both agree with
// the live backend contents. The checksum set is visited in sorted order so
// the fingerprint is independent of backend iteration order.
func (c *Context) fingerprint(ctx context.Context, params lsh.Params) (uint64, error) {
	var checksums []store.Checksum
	err := c.Backend.IterAll(ctx, func(sn store.Snippet) error {
		checksums = append(checksums, sn.Checksum)
		return nil
	})
	if err != nil {
		return 0, err
	}
	sort.Slice(checksums, func(i, j int) bool {
		for k := 0; k < 32; k++ {
			if checksums[i][k] != checksums[j][k] {
				return checksums[i][k] < checksums[j][k]
			}
		}
		return false
	})

	h := xxhash.New()
	var hdr [21]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(params.Permutations))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(params.NgramSize))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(params.Bands))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(params.Rows))
	if params.Generalize {
		hdr[16] = 1
	}
	binary.LittleEndian.PutUint32(hdr[17:21], uint32(len(checksums)))
	h.Write(hdr[:])
	for _, cs := range checksums {
		h.Write(cs[:])
	}
	return h.Sum64(), nil
}

// serializeMinHash and minhashFromBytes bridge store.Snippet's opaque
// MinHash byte field and the typed minhash.Signature used everywhere else.
func serializeMinHash(sig minhash.Signature) []byte {
	return minhash.Serialize(sig)
}

func minhashFromBytes(data []byte, wantP int) (minhash.Signature, error) {
	sig, err := minhash.Parse(data, wantP)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return sig, nil
}

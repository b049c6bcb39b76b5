package lsh

import (
	"encoding/binary"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/maci0/resembl/internal/minhash"
)

// Checksum is a Snippet's content-addressed primary key.
type Checksum [32]byte

// bucketKey identifies one band's bucket: the band index plus the 64-bit
// hash of that band's signature slice.
type bucketKey struct {
	band uint8
	key  uint64
}

// Index is an in-memory banded LSH index. Bucket membership is tracked by
// orchestrator-assigned surrogate uint32 ids in Roaring bitmaps rather than raw
// checksum sets, with the id<->checksum correspondence kept alongside the
// signatures.
type Index struct {
	Params Params

	mu         sync.RWMutex
	sigs       map[Checksum]minhash.Signature
	idOf       map[Checksum]uint32
	checksumOf map[uint32]Checksum
	buckets    map[bucketKey]*roaring.Bitmap
}

// New creates an empty index for the given parameters. Bands and Rows are
// computed with ChooseBanding if not already set.
func New(p Params, threshold float64) *Index {
	if p.Bands == 0 || p.Rows == 0 {
		p.Bands, p.Rows = ChooseBanding(p.Permutations, threshold)
	}
	return &Index{
		Params:     p,
		sigs:       make(map[Checksum]minhash.Signature),
		idOf:       make(map[Checksum]uint32),
		checksumOf: make(map[uint32]Checksum),
		buckets:    make(map[bucketKey]*roaring.Bitmap),
	}
}

// Len reports the number of signatures held in the index.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.sigs)
}

// bandKeys computes the index's b band bucket keys for sig.
func (idx *Index) bandKeys(sig minhash.Signature) []uint64 {
	b, r := idx.Params.Bands, idx.Params.Rows
	keys := make([]uint64, b)
	buf := make([]byte, 8*r)
	for band := 0; band < b; band++ {
		slice := sig[band*r : band*r+r]
		for i, v := range slice {
			binary.LittleEndian.PutUint64(buf[i*8:], v)
		}
		keys[band] = xxhash.Sum64(buf)
	}
	return keys
}

// AllocateID returns a fresh surrogate id, one greater than the largest id
// in use (0 for an empty index), for incremental inserts performed by the
// orchestrator one snippet at a time. It records nothing, so two calls
// without an Insert in between return the same id.
func (idx *Index) AllocateID() uint32 {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	var max uint32
	any := false
	for id := range idx.checksumOf {
		if !any || id > max {
			max = id
			any = true
		}
	}
	if !any {
		return 0
	}
	return max + 1
}

// Insert adds checksum (already assigned surrogate id by the orchestrator) to the
// index in O(b).
func (idx *Index) Insert(id uint32, checksum Checksum, sig minhash.Signature) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.sigs[checksum] = sig
	idx.idOf[checksum] = id
	idx.checksumOf[id] = checksum

	keys := idx.bandKeys(sig)
	for band, key := range keys {
		bk := bucketKey{band: uint8(band), key: key}
		bm, ok := idx.buckets[bk]
		if !ok {
			bm = roaring.New()
			idx.buckets[bk] = bm
		}
		bm.Add(id)
	}
}

// Remove drops checksum from the index. Signatures are retained (the
// Params.Bands/Rows slices used to locate its buckets are still known), so
// removal stays O(b); if the caller has already discarded
// signatures elsewhere, a full rebuild is required instead.
func (idx *Index) Remove(checksum Checksum) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	sig, ok := idx.sigs[checksum]
	if !ok {
		return
	}
	id := idx.idOf[checksum]
	keys := idx.bandKeys(sig)
	for band, key := range keys {
		bk := bucketKey{band: uint8(band), key: key}
		if bm, ok := idx.buckets[bk]; ok {
			bm.Remove(id)
			if bm.IsEmpty() {
				delete(idx.buckets, bk)
			}
		}
	}
	delete(idx.sigs, checksum)
	delete(idx.idOf, checksum)
	delete(idx.checksumOf, id)
}

// Query returns the union of bucket members across all of the query
// signature's band keys, with no pre-ranking filtering.
func (idx *Index) Query(sig minhash.Signature) []Checksum {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	union := roaring.New()
	for band, key := range idx.bandKeys(sig) {
		bk := bucketKey{band: uint8(band), key: key}
		if bm, ok := idx.buckets[bk]; ok {
			union.Or(bm)
		}
	}

	out := make([]Checksum, 0, union.GetCardinality())
	it := union.Iterator()
	for it.HasNext() {
		id := it.Next()
		if cs, ok := idx.checksumOf[id]; ok {
			out = append(out, cs)
		}
	}
	return out
}

// Signature returns the stored signature for checksum, if present.
func (idx *Index) Signature(checksum Checksum) (minhash.Signature, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	sig, ok := idx.sigs[checksum]
	return sig, ok
}

// Checksums returns every checksum currently indexed, in no particular
// order.
func (idx *Index) Checksums() []Checksum {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]Checksum, 0, len(idx.sigs))
	for cs := range idx.sigs {
		out = append(out, cs)
	}
	return out
}

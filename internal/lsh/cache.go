package lsh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc64"
	"io"
	"os"
	"path/filepath"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/edsrzf/mmap-go"
	"github.com/gofrs/flock"

	"github.com/maci0/resembl/internal/minhash"
)

const (
	cacheVersion uint16 = 1

	flagGeneralizeOn uint16 = 1 << 0
)

var magicBytes = [4]byte{'R', 'S', 'M', 'B'}

var crc64Table = crc64.MakeTable(crc64.ISO)

// ErrCorrupt indicates the cache file failed a structural or CRC check and
// must be treated as missing.
var ErrCorrupt = errors.New("lsh: corrupt cache file")

// ErrParamsMismatch indicates the cache was built with different index
// parameters and must be treated as missing.
var ErrParamsMismatch = errors.New("lsh: cache parameter mismatch")

// LockPath returns the advisory lock file path for a cache directory.
func LockPath(cacheDir string) string {
	return filepath.Join(cacheDir, ".lock")
}

// Lock acquires the exclusive advisory lock guarding cache writes in
// cacheDir. The caller must Unlock the returned lock.
func Lock(cacheDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(LockPath(cacheDir))
	if err := fl.Lock(); err != nil {
		return nil, err
	}
	return fl, nil
}

// Save atomically persists idx to path as: write <path>.tmp, fsync, rename
// into place.
func Save(path string, idx *Index, fingerprint uint64) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var buf bytes.Buffer
	buf.Write(magicBytes[:])
	writeU16(&buf, cacheVersion)
	flags := uint16(0)
	if idx.Params.Generalize {
		flags |= flagGeneralizeOn
	}
	writeU16(&buf, flags)
	writeU32(&buf, uint32(idx.Params.Permutations))
	writeU32(&buf, uint32(idx.Params.NgramSize))
	writeU32(&buf, uint32(idx.Params.Bands))
	writeU32(&buf, uint32(idx.Params.Rows))
	writeU64(&buf, fingerprint)

	checksums := make([]Checksum, 0, len(idx.sigs))
	for cs := range idx.sigs {
		checksums = append(checksums, cs)
	}
	writeU64(&buf, uint64(len(checksums)))
	for _, cs := range checksums {
		buf.Write(cs[:])
		sig := idx.sigs[cs]
		for _, v := range sig {
			writeU64(&buf, v)
		}
	}

	writeU64(&buf, uint64(len(idx.buckets)))
	for bk, bm := range idx.buckets {
		buf.WriteByte(bk.band)
		writeU64(&buf, bk.key)
		members := bm.ToArray()
		writeU32(&buf, uint32(len(members)))
		for _, id := range members {
			cs, ok := idx.checksumOf[id]
			if !ok {
				continue
			}
			buf.Write(cs[:])
		}
	}

	sum := crc64.Checksum(buf.Bytes(), crc64Table)
	writeU64(&buf, sum)

	return atomicWrite(path, buf.Bytes())
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads and validates a cache file, returning ErrCorrupt on a
// structural or checksum failure and ErrParamsMismatch when want disagrees
// with the file's params. Both are treated identically by callers: as a
// missing cache that must be rebuilt.
//
// The file is read through mmap when the platform supports it, falling
// back to a plain buffered read.
func Load(path string, want Params) (*Index, uint64, error) {
	data, err := readFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	idx, fingerprint, err := decode(data, want)
	if err != nil {
		return nil, 0, err
	}
	return idx, fingerprint, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorrupt)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// mmap unavailable on this platform/backend: fall back to a
		// buffered read.
		return io.ReadAll(f)
	}
	defer m.Unmap()
	out := make([]byte, len(m))
	copy(out, m)
	return out, nil
}

func decode(data []byte, want Params) (*Index, uint64, error) {
	const headerLen = 4 + 2 + 2 + 4 + 4 + 4 + 4 + 8 + 8
	if len(data) < headerLen+8 {
		return nil, 0, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}

	trailer := len(data) - 8
	wantSum := binary.LittleEndian.Uint64(data[trailer:])
	gotSum := crc64.Checksum(data[:trailer], crc64Table)
	if wantSum != gotSum {
		return nil, 0, fmt.Errorf("%w: crc mismatch", ErrCorrupt)
	}
	body := data[:trailer]

	r := &reader{buf: body}
	var magic [4]byte
	if err := r.read(magic[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if magic != magicBytes {
		return nil, 0, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	version, err := r.u16()
	if err != nil || version != cacheVersion {
		return nil, 0, fmt.Errorf("%w: unsupported version", ErrCorrupt)
	}
	flags, err := r.u16()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	p32, err1 := r.u32()
	k32, err2 := r.u32()
	b32, err3 := r.u32()
	rows32, err4 := r.u32()
	fingerprint, err5 := r.u64()
	if err := firstErr(err1, err2, err3, err4, err5); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	params := Params{
		Permutations: int(p32),
		NgramSize:    int(k32),
		Bands:        int(b32),
		Rows:         int(rows32),
		Generalize:   flags&flagGeneralizeOn != 0,
	}
	if want.Permutations != 0 && (params.Permutations != want.Permutations ||
		params.NgramSize != want.NgramSize || params.Generalize != want.Generalize) {
		return nil, 0, ErrParamsMismatch
	}

	idx := New(params, DefaultThreshold)
	idx.Params = params

	n, err := r.u64()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var nextID uint32
	checksumByBytes := make(map[Checksum]uint32, n)
	for i := uint64(0); i < n; i++ {
		var cs Checksum
		if err := r.read(cs[:]); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		sig := make(minhash.Signature, params.Permutations)
		for j := range sig {
			v, err := r.u64()
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			sig[j] = v
		}
		id := nextID
		nextID++
		idx.sigs[cs] = sig
		idx.idOf[cs] = id
		idx.checksumOf[id] = cs
		checksumByBytes[cs] = id
	}

	nb, err := r.u64()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for i := uint64(0); i < nb; i++ {
		band, err := r.u8()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		key, err := r.u64()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		count, err := r.u32()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		bk := bucketKey{band: band, key: key}
		bm := bucketFor(idx, bk)
		for j := uint32(0); j < count; j++ {
			var cs Checksum
			if err := r.read(cs[:]); err != nil {
				return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			id, ok := checksumByBytes[cs]
			if !ok {
				return nil, 0, fmt.Errorf("%w: bucket references unknown checksum", ErrCorrupt)
			}
			bm.Add(id)
		}
	}

	return idx, fingerprint, nil
}

func bucketFor(idx *Index, bk bucketKey) *roaring.Bitmap {
	bm, ok := idx.buckets[bk]
	if !ok {
		bm = roaring.New()
		idx.buckets[bk] = bm
	}
	return bm
}

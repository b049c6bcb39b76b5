package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/maci0/resembl/internal/store"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resembl.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func cs(b byte) store.Checksum {
	var c store.Checksum
	c[0] = b
	return c
}

func TestUpsertCreatedThenAliased(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	res, err := s.UpsertSnippet(ctx, cs(1), "mov eax, ebx", []byte{1, 2}, "f1")
	if err != nil || res != store.Created {
		t.Fatalf("first upsert = %v, %v, want Created", res, err)
	}
	res, err = s.UpsertSnippet(ctx, cs(1), "mov eax, ebx", []byte{1, 2}, "f2")
	if err != nil || res != store.Aliased {
		t.Fatalf("second upsert = %v, %v, want Aliased", res, err)
	}

	sn, err := s.GetByChecksum(ctx, cs(1))
	if err != nil {
		t.Fatalf("GetByChecksum: %v", err)
	}
	if len(sn.Names) != 2 || sn.Names[0] != "f1" || sn.Names[1] != "f2" {
		t.Fatalf("names = %v, want [f1 f2]", sn.Names)
	}
}

func TestRemoveNameFailsOnLast(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	s.UpsertSnippet(ctx, cs(1), "code", nil, "only")

	if err := s.RemoveName(ctx, cs(1), "only"); !errors.Is(err, store.ErrEmptyAliasSet) {
		t.Fatalf("err = %v, want ErrEmptyAliasSet", err)
	}
}

func TestPrefixLookup(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	var a, b store.Checksum
	a[0], a[1] = 0xAB, 0x01
	b[0], b[1] = 0xAB, 0x02
	s.UpsertSnippet(ctx, a, "codeA", nil, "a")
	s.UpsertSnippet(ctx, b, "codeB", nil, "b")

	if _, err := s.GetByChecksumPrefix(ctx, "ab"); !errors.Is(err, store.ErrAmbiguous) {
		t.Fatalf("err = %v, want ErrAmbiguous", err)
	}
	sn, err := s.GetByChecksumPrefix(ctx, "ab01")
	if err != nil || sn.Checksum != a {
		t.Fatalf("unique prefix lookup failed: %v %v", sn, err)
	}
}

func TestIterAllOrderedByChecksum(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	s.UpsertSnippet(ctx, cs(3), "c3", nil, "n3")
	s.UpsertSnippet(ctx, cs(1), "c1", nil, "n1")
	s.UpsertSnippet(ctx, cs(2), "c2", nil, "n2")

	var order []byte
	if err := s.IterAll(ctx, func(sn store.Snippet) error {
		order = append(order, sn.Checksum[0])
		return nil
	}); err != nil {
		t.Fatalf("IterAll: %v", err)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("iteration order = %v, want [1 2 3]", order)
	}
}

func TestCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	s.UpsertSnippet(ctx, cs(1), "code", nil, "n1")

	if err := s.CreateCollection(ctx, "utils", "misc helpers"); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if err := s.AssignCollection(ctx, cs(1), "utils"); err != nil {
		t.Fatalf("AssignCollection: %v", err)
	}
	sn, err := s.GetByChecksum(ctx, cs(1))
	if err != nil || sn.CollectionRef != "utils" {
		t.Fatalf("snippet collection = %q, err %v, want utils", sn.CollectionRef, err)
	}

	if err := s.DeleteCollection(ctx, "utils"); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	sn, err = s.GetByChecksum(ctx, cs(1))
	if err != nil || sn.CollectionRef != "" {
		t.Fatalf("snippet collection after delete = %q, want empty", sn.CollectionRef)
	}
}

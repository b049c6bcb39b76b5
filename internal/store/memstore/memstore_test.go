package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/maci0/resembl/internal/store"
)

func cs(b byte) store.Checksum {
	var c store.Checksum
	c[0] = b
	return c
}

func TestUpsertCreatedThenAliased(t *testing.T) {
	ctx := context.Background()
	s := New()

	res, err := s.UpsertSnippet(ctx, cs(1), "mov eax, ebx", nil, "f1")
	if err != nil || res != store.Created {
		t.Fatalf("first upsert = %v, %v, want Created", res, err)
	}
	res, err = s.UpsertSnippet(ctx, cs(1), "mov eax, ebx", nil, "f2")
	if err != nil || res != store.Aliased {
		t.Fatalf("second upsert = %v, %v, want Aliased", res, err)
	}
	sn, err := s.GetByChecksum(ctx, cs(1))
	if err != nil || len(sn.Names) != 2 {
		t.Fatalf("snippet names = %v, err %v, want 2 names", sn.Names, err)
	}
}

func TestRemoveNameFailsOnLast(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.UpsertSnippet(ctx, cs(1), "code", nil, "only")

	if err := s.RemoveName(ctx, cs(1), "only"); !errors.Is(err, store.ErrEmptyAliasSet) {
		t.Fatalf("err = %v, want ErrEmptyAliasSet", err)
	}
}

func TestGetByChecksumPrefixAmbiguous(t *testing.T) {
	ctx := context.Background()
	s := New()
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
	s := New()
	s.UpsertSnippet(ctx, cs(3), "c3", nil, "n3")
	s.UpsertSnippet(ctx, cs(1), "c1", nil, "n1")
	s.UpsertSnippet(ctx, cs(2), "c2", nil, "n2")

	var order []byte
	s.IterAll(ctx, func(sn store.Snippet) error {
		order = append(order, sn.Checksum[0])
		return nil
	})
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("iteration order = %v, want [1 2 3]", order)
	}
}

func TestMergeUnionsNamesAndRebindsOnCollision(t *testing.T) {
	ctx := context.Background()
	dst := New()
	src := New()

	dst.UpsertSnippet(ctx, cs(1), "old code", nil, "shared")
	src.UpsertSnippet(ctx, cs(2), "new code", nil, "shared")

	if err := dst.Merge(ctx, src); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	sn, err := dst.GetByName(ctx, "shared")
	if err != nil || sn.Checksum != cs(2) {
		t.Fatalf("after merge, 'shared' should be bound to cs(2): %v %v", sn, err)
	}
	if _, err := dst.GetByChecksum(ctx, cs(1)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("old snippet with no remaining names should be deleted, err = %v", err)
	}
	if len(dst.versions) != 1 {
		t.Fatalf("expected one SnippetVersion logged, got %d", len(dst.versions))
	}
}

func TestMergeAdoptsNonCollidingSnippet(t *testing.T) {
	ctx := context.Background()
	dst := New()
	src := New()
	src.UpsertSnippet(ctx, cs(5), "code5", nil, "five")

	if err := dst.Merge(ctx, src); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	sn, err := dst.GetByChecksum(ctx, cs(5))
	if err != nil || len(sn.Names) != 1 || sn.Names[0] != "five" {
		t.Fatalf("adopted snippet = %v, err %v", sn, err)
	}
}

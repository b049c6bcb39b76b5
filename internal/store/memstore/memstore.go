// Package memstore is an in-memory store.Backend used by tests and by the
// orchestrator's own unit tests. Checksum ordering for IterAll is kept in a
// google/btree tree rather than re-sorted on every call.
package memstore

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/maci0/resembl/internal/store"
)

type checksumItem struct {
	checksum store.Checksum
}

func (a checksumItem) Less(than btree.Item) bool {
	b := than.(checksumItem)
	return bytes.Compare(a.checksum[:], b.checksum[:]) < 0
}

// Store is the in-memory Backend.
type Store struct {
	mu          sync.RWMutex
	snippets    map[store.Checksum]store.Snippet
	nameIndex   map[string]store.Checksum
	collections map[string]store.Collection
	versions    []store.SnippetVersion
	order       *btree.BTree
	nextVersion int64
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		snippets:    make(map[store.Checksum]store.Snippet),
		nameIndex:   make(map[string]store.Checksum),
		collections: make(map[string]store.Collection),
		order:       btree.New(32),
	}
}

var _ store.Backend = (*Store)(nil)

func (s *Store) UpsertSnippet(_ context.Context, checksum store.Checksum, code string, minhash []byte, initialName string) (store.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.snippets[checksum]; ok {
		for _, n := range existing.Names {
			if n == initialName {
				return store.Aliased, nil
			}
		}
		if owner, ok := s.nameIndex[initialName]; ok && owner != checksum {
			return 0, fmt.Errorf("%w: name %q owned by another snippet", store.ErrAlreadyExists, initialName)
		}
		existing.Names = append(existing.Names, initialName)
		s.snippets[checksum] = existing
		s.nameIndex[initialName] = checksum
		return store.Aliased, nil
	}

	if owner, ok := s.nameIndex[initialName]; ok && owner != checksum {
		return 0, fmt.Errorf("%w: name %q owned by another snippet", store.ErrAlreadyExists, initialName)
	}

	s.snippets[checksum] = store.Snippet{
		Checksum:  checksum,
		Code:      code,
		Names:     []string{initialName},
		MinHash:   minhash,
		CreatedAt: time.Now(),
	}
	s.nameIndex[initialName] = checksum
	s.order.ReplaceOrInsert(checksumItem{checksum})
	return store.Created, nil
}

func (s *Store) GetByChecksum(_ context.Context, checksum store.Checksum) (store.Snippet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn, ok := s.snippets[checksum]
	if !ok {
		return store.Snippet{}, store.ErrNotFound
	}
	return sn, nil
}

func (s *Store) GetByChecksumPrefix(_ context.Context, prefix string) (store.Snippet, error) {
	prefix = strings.ToLower(prefix)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var match *store.Snippet
	for cs, sn := range s.snippets {
		if strings.HasPrefix(hex.EncodeToString(cs[:]), prefix) {
			if match != nil {
				return store.Snippet{}, store.ErrAmbiguous
			}
			snCopy := sn
			match = &snCopy
		}
	}
	if match == nil {
		return store.Snippet{}, store.ErrNotFound
	}
	return *match, nil
}

func (s *Store) GetByName(_ context.Context, name string) (store.Snippet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs, ok := s.nameIndex[name]
	if !ok {
		return store.Snippet{}, store.ErrNotFound
	}
	return s.snippets[cs], nil
}

func (s *Store) AddName(_ context.Context, checksum store.Checksum, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.nameIndex[name]; ok {
		if owner == checksum {
			return nil
		}
		return fmt.Errorf("%w: name %q owned by another snippet", store.ErrAlreadyExists, name)
	}
	sn, ok := s.snippets[checksum]
	if !ok {
		return store.ErrNotFound
	}
	sn.Names = append(sn.Names, name)
	s.snippets[checksum] = sn
	s.nameIndex[name] = checksum
	return nil
}

func (s *Store) RemoveName(_ context.Context, checksum store.Checksum, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn, ok := s.snippets[checksum]
	if !ok {
		return store.ErrNotFound
	}
	if len(sn.Names) <= 1 {
		return store.ErrEmptyAliasSet
	}
	idx := -1
	for i, n := range sn.Names {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store.ErrNotFound
	}
	sn.Names = append(sn.Names[:idx], sn.Names[idx+1:]...)
	s.snippets[checksum] = sn
	delete(s.nameIndex, name)
	return nil
}

func (s *Store) AddTag(_ context.Context, checksum store.Checksum, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, ok := s.snippets[checksum]
	if !ok {
		return store.ErrNotFound
	}
	for _, t := range sn.Tags {
		if t == tag {
			return nil
		}
	}
	sn.Tags = append(sn.Tags, tag)
	s.snippets[checksum] = sn
	return nil
}

func (s *Store) RemoveTag(_ context.Context, checksum store.Checksum, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, ok := s.snippets[checksum]
	if !ok {
		return store.ErrNotFound
	}
	idx := -1
	for i, t := range sn.Tags {
		if t == tag {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store.ErrNotFound
	}
	sn.Tags = append(sn.Tags[:idx], sn.Tags[idx+1:]...)
	s.snippets[checksum] = sn
	return nil
}

func (s *Store) UpdateMinHash(_ context.Context, checksum store.Checksum, minhash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, ok := s.snippets[checksum]
	if !ok {
		return store.ErrNotFound
	}
	sn.MinHash = minhash
	s.snippets[checksum] = sn
	return nil
}

func (s *Store) CreateCollection(_ context.Context, name, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return store.ErrAlreadyExists
	}
	s.collections[name] = store.Collection{Name: name, Description: description, CreatedAt: time.Now()}
	return nil
}

func (s *Store) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return store.ErrNotFound
	}
	delete(s.collections, name)
	for cs, sn := range s.snippets {
		if sn.CollectionRef == name {
			sn.CollectionRef = ""
			s.snippets[cs] = sn
		}
	}
	return nil
}

func (s *Store) GetCollection(_ context.Context, name string) (store.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return store.Collection{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCollections(_ context.Context) ([]store.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Collection, 0, len(s.collections))
	for _, c := range s.collections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) AssignCollection(_ context.Context, checksum store.Checksum, collectionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, ok := s.snippets[checksum]
	if !ok {
		return store.ErrNotFound
	}
	if collectionName != "" {
		if _, ok := s.collections[collectionName]; !ok {
			return store.ErrNotFound
		}
	}
	sn.CollectionRef = collectionName
	s.snippets[checksum] = sn
	return nil
}

func (s *Store) AppendVersion(_ context.Context, v store.SnippetVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextVersion++
	v.ID = s.nextVersion
	v.CreatedAt = time.Now()
	s.versions = append(s.versions, v)
	return nil
}

func (s *Store) Delete(_ context.Context, checksum store.Checksum) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, ok := s.snippets[checksum]
	if !ok {
		return store.ErrNotFound
	}
	for _, n := range sn.Names {
		delete(s.nameIndex, n)
	}
	delete(s.snippets, checksum)
	s.order.Delete(checksumItem{checksum})
	return nil
}

func (s *Store) IterAll(_ context.Context, fn func(store.Snippet) error) error {
	s.mu.RLock()
	items := make([]store.Checksum, 0, s.order.Len())
	s.order.Ascend(func(it btree.Item) bool {
		items = append(items, it.(checksumItem).checksum)
		return true
	})
	snapshot := make([]store.Snippet, 0, len(items))
	for _, cs := range items {
		snapshot = append(snapshot, s.snippets[cs])
	}
	s.mu.RUnlock()

	for _, sn := range snapshot {
		if err := fn(sn); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Merge(ctx context.Context, other store.Backend) error {
	return store.GenericMerge(ctx, s, other)
}

func (s *Store) Vacuum(context.Context) error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

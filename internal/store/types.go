// Package store defines the content-addressed snippet repository contract
// and its checksum/alias/tag/collection/version side-tables,
// plus concrete backends.
package store

import "time"

// Checksum is a Snippet's SHA-256 primary key over its normalized code.
type Checksum [32]byte

// Snippet is the core stored entity.
type Snippet struct {
	Checksum      Checksum
	Code          string
	Names         []string // ordered, insertion order, no duplicates, len >= 1
	Tags          []string
	MinHash       []byte // serialized signature
	CollectionRef string // collection name, "" if unassigned
	CreatedAt     time.Time
}

// Collection groups snippets under a shared name.
type Collection struct {
	Name        string
	Description string
	CreatedAt   time.Time
}

// SnippetVersion is one immutable entry in the append-only rebinding log: a
// name previously bound to one checksum was rebound to another.
type SnippetVersion struct {
	ID        int64
	Name      string
	Checksum  Checksum
	Code      string
	MinHash   []byte
	CreatedAt time.Time
}

// UpsertResult reports which of the two upsert_snippet outcomes occurred.
type UpsertResult int

const (
	Created UpsertResult = iota
	Aliased
)

func (r UpsertResult) String() string {
	if r == Created {
		return "created"
	}
	return "aliased"
}

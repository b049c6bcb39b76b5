package store

import "context"

// Backend is the abstract transactional repository the search orchestrator
// depends on. Every mutating method is expected to be
// atomic; implementations choose their own isolation mechanism.
type Backend interface {
	// UpsertSnippet inserts a new Snippet keyed by checksum, or — if one
	// already exists — atomically adds initialName to its Names (a no-op if
	// already present) and reports Aliased.
	UpsertSnippet(ctx context.Context, checksum Checksum, code string, minhash []byte, initialName string) (UpsertResult, error)

	// GetByChecksumPrefix resolves a hex checksum prefix to exactly one
	// Snippet. ErrNotFound if none match, ErrAmbiguous if more than one
	// does.
	GetByChecksumPrefix(ctx context.Context, prefix string) (Snippet, error)

	// GetByChecksum is an exact-key lookup.
	GetByChecksum(ctx context.Context, checksum Checksum) (Snippet, error)

	// GetByName resolves a name to the snippet it is currently bound to.
	// Names are globally unique across snippets.
	GetByName(ctx context.Context, name string) (Snippet, error)

	// AddName binds name to checksum. If name is already bound to a
	// different checksum, it returns ErrAlreadyExists; the caller decides
	// whether that is a rebinding (see store.RebindOrAdopt).
	AddName(ctx context.Context, checksum Checksum, name string) error
	// RemoveName fails with ErrEmptyAliasSet if it would remove the last
	// name on the snippet.
	RemoveName(ctx context.Context, checksum Checksum, name string) error

	AddTag(ctx context.Context, checksum Checksum, tag string) error
	RemoveTag(ctx context.Context, checksum Checksum, tag string) error

	// UpdateMinHash overwrites the stored signature bytes for checksum,
	// used by reindex after recomputing under new index parameters.
	UpdateMinHash(ctx context.Context, checksum Checksum, minhash []byte) error

	CreateCollection(ctx context.Context, name, description string) error
	DeleteCollection(ctx context.Context, name string) error
	GetCollection(ctx context.Context, name string) (Collection, error)
	ListCollections(ctx context.Context) ([]Collection, error)
	AssignCollection(ctx context.Context, checksum Checksum, collectionName string) error

	AppendVersion(ctx context.Context, v SnippetVersion) error

	// Delete removes a snippet entirely.
	Delete(ctx context.Context, checksum Checksum) error

	// IterAll visits every snippet ordered by checksum, lexicographically
	// ascending, stopping early if fn returns an error.
	IterAll(ctx context.Context, fn func(Snippet) error) error

	// Merge upserts every snippet from other into this backend, unioning
	// names and tags on checksum collision and logging any resulting
	// per-name rebinding via AppendVersion.
	Merge(ctx context.Context, other Backend) error

	// Vacuum reclaims storage space; called by the clean operation.
	Vacuum(ctx context.Context) error

	// Ping verifies connectivity/health.
	Ping(ctx context.Context) error

	Close() error
}

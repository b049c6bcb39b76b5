// Package sqlite is the default local store.Backend, over
// modernc.org/sqlite (pure Go, no cgo) via database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/maci0/resembl/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS snippets (
	checksum    BLOB PRIMARY KEY,
	code        TEXT NOT NULL,
	minhash     BLOB,
	collection  TEXT,
	created_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS snippet_names (
	name        TEXT PRIMARY KEY,
	checksum    BLOB NOT NULL REFERENCES snippets(checksum),
	seq         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS snippet_names_checksum ON snippet_names(checksum);
CREATE TABLE IF NOT EXISTS snippet_tags (
	checksum    BLOB NOT NULL REFERENCES snippets(checksum),
	tag         TEXT NOT NULL,
	PRIMARY KEY (checksum, tag)
);
CREATE TABLE IF NOT EXISTS collections (
	name        TEXT PRIMARY KEY,
	description TEXT,
	created_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS snippet_versions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	checksum    BLOB NOT NULL,
	code        TEXT NOT NULL,
	minhash     BLOB,
	created_at  INTEGER NOT NULL
);
`

// Store is the SQLite-backed Backend. Writes are serialised through a
// single *sql.DB with its pool capped to one connection, matching the
// single-writer model.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates/migrates the database at dsn (a database/sql data source
// name, typically a filesystem path) and returns a ready Store.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrPermanentStorage, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrating schema: %v", store.ErrPermanentStorage, err)
	}
	return &Store{db: db}, nil
}

var _ store.Backend = (*Store)(nil)

func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "locked") || strings.Contains(msg, "busy") {
		return fmt.Errorf("%w: %v", store.ErrTransientStorage, err)
	}
	return fmt.Errorf("%w: %v", store.ErrPermanentStorage, err)
}

func (s *Store) UpsertSnippet(ctx context.Context, checksum store.Checksum, code string, minhash []byte, initialName string) (store.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classifyErr(err)
	}
	defer tx.Rollback()

	var existing []byte
	err = tx.QueryRowContext(ctx, `SELECT checksum FROM snippets WHERE checksum = ?`, checksum[:]).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `INSERT INTO snippets(checksum, code, minhash, created_at) VALUES (?, ?, ?, ?)`,
			checksum[:], code, minhash, time.Now().Unix()); err != nil {
			return 0, classifyErr(err)
		}
		if err := insertName(ctx, tx, checksum, initialName, 0); err != nil {
			return 0, err
		}
		return store.Created, commitOrErr(tx)
	case err != nil:
		return 0, classifyErr(err)
	default:
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM snippet_names WHERE name = ? AND checksum = ?`, initialName, checksum[:]).Scan(&count); err != nil {
			return 0, classifyErr(err)
		}
		if count == 0 {
			var owner []byte
			err := tx.QueryRowContext(ctx, `SELECT checksum FROM snippet_names WHERE name = ?`, initialName).Scan(&owner)
			if err == nil {
				return 0, fmt.Errorf("%w: name %q owned by another snippet", store.ErrAlreadyExists, initialName)
			}
			var seq int
			tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), -1) + 1 FROM snippet_names WHERE checksum = ?`, checksum[:]).Scan(&seq)
			if err := insertName(ctx, tx, checksum, initialName, seq); err != nil {
				return 0, err
			}
		}
		return store.Aliased, commitOrErr(tx)
	}
}

func insertName(ctx context.Context, tx *sql.Tx, checksum store.Checksum, name string, seq int) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO snippet_names(name, checksum, seq) VALUES (?, ?, ?)`, name, checksum[:], seq); err != nil {
		return classifyErr(err)
	}
	return nil
}

func commitOrErr(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return classifyErr(err)
	}
	return nil
}

func (s *Store) loadSnippet(ctx context.Context, q queryer, checksum store.Checksum) (store.Snippet, error) {
	var sn store.Snippet
	sn.Checksum = checksum
	var collection sql.NullString
	var createdAt int64
	err := q.QueryRowContext(ctx, `SELECT code, minhash, collection, created_at FROM snippets WHERE checksum = ?`, checksum[:]).
		Scan(&sn.Code, &sn.MinHash, &collection, &createdAt)
	if err != nil {
		return store.Snippet{}, classifyErr(err)
	}
	sn.CollectionRef = collection.String
	sn.CreatedAt = time.Unix(createdAt, 0).UTC()

	names, err := q.QueryContext(ctx, `SELECT name FROM snippet_names WHERE checksum = ? ORDER BY seq`, checksum[:])
	if err != nil {
		return store.Snippet{}, classifyErr(err)
	}
	defer names.Close()
	for names.Next() {
		var n string
		if err := names.Scan(&n); err != nil {
			return store.Snippet{}, classifyErr(err)
		}
		sn.Names = append(sn.Names, n)
	}

	tags, err := q.QueryContext(ctx, `SELECT tag FROM snippet_tags WHERE checksum = ? ORDER BY tag`, checksum[:])
	if err != nil {
		return store.Snippet{}, classifyErr(err)
	}
	defer tags.Close()
	for tags.Next() {
		var t string
		if err := tags.Scan(&t); err != nil {
			return store.Snippet{}, classifyErr(err)
		}
		sn.Tags = append(sn.Tags, t)
	}
	return sn, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) GetByChecksum(ctx context.Context, checksum store.Checksum) (store.Snippet, error) {
	return s.loadSnippet(ctx, s.db, checksum)
}

func (s *Store) GetByChecksumPrefix(ctx context.Context, prefix string) (store.Snippet, error) {
	prefix = strings.ToLower(prefix)
	rows, err := s.db.QueryContext(ctx, `SELECT checksum FROM snippets`)
	if err != nil {
		return store.Snippet{}, classifyErr(err)
	}
	defer rows.Close()

	var match *store.Checksum
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return store.Snippet{}, classifyErr(err)
		}
		if strings.HasPrefix(hex.EncodeToString(raw), prefix) {
			if match != nil {
				return store.Snippet{}, store.ErrAmbiguous
			}
			var cs store.Checksum
			copy(cs[:], raw)
			match = &cs
		}
	}
	if match == nil {
		return store.Snippet{}, store.ErrNotFound
	}
	return s.GetByChecksum(ctx, *match)
}

func (s *Store) GetByName(ctx context.Context, name string) (store.Snippet, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT checksum FROM snippet_names WHERE name = ?`, name).Scan(&raw)
	if err != nil {
		return store.Snippet{}, classifyErr(err)
	}
	var cs store.Checksum
	copy(cs[:], raw)
	return s.GetByChecksum(ctx, cs)
}

func (s *Store) AddName(ctx context.Context, checksum store.Checksum, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owner []byte
	err := s.db.QueryRowContext(ctx, `SELECT checksum FROM snippet_names WHERE name = ?`, name).Scan(&owner)
	if err == nil {
		var ownerCs store.Checksum
		copy(ownerCs[:], owner)
		if ownerCs == checksum {
			return nil
		}
		return fmt.Errorf("%w: name %q owned by another snippet", store.ErrAlreadyExists, name)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return classifyErr(err)
	}
	var seq int
	s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), -1) + 1 FROM snippet_names WHERE checksum = ?`, checksum[:]).Scan(&seq)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO snippet_names(name, checksum, seq) VALUES (?, ?, ?)`, name, checksum[:], seq); err != nil {
		return classifyErr(err)
	}
	return nil
}

func (s *Store) RemoveName(ctx context.Context, checksum store.Checksum, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snippet_names WHERE checksum = ?`, checksum[:]).Scan(&count); err != nil {
		return classifyErr(err)
	}
	if count <= 1 {
		return store.ErrEmptyAliasSet
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM snippet_names WHERE checksum = ? AND name = ?`, checksum[:], name)
	if err != nil {
		return classifyErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AddTag(ctx context.Context, checksum store.Checksum, tag string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO snippet_tags(checksum, tag) VALUES (?, ?)`, checksum[:], tag)
	return classifyErr(err)
}

func (s *Store) RemoveTag(ctx context.Context, checksum store.Checksum, tag string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snippet_tags WHERE checksum = ? AND tag = ?`, checksum[:], tag)
	if err != nil {
		return classifyErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateMinHash(ctx context.Context, checksum store.Checksum, minhash []byte) error {
	res, err := s.db.ExecContext(ctx, `UPDATE snippets SET minhash = ? WHERE checksum = ?`, minhash, checksum[:])
	if err != nil {
		return classifyErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateCollection(ctx context.Context, name, description string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO collections(name, description, created_at) VALUES (?, ?, ?)`, name, description, time.Now().Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return store.ErrAlreadyExists
		}
		return classifyErr(err)
	}
	return nil
}

func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name)
	if err != nil {
		return classifyErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE snippets SET collection = NULL WHERE collection = ?`, name); err != nil {
		return classifyErr(err)
	}
	return nil
}

func (s *Store) GetCollection(ctx context.Context, name string) (store.Collection, error) {
	var c store.Collection
	c.Name = name
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `SELECT description, created_at FROM collections WHERE name = ?`, name).Scan(&c.Description, &createdAt)
	if err != nil {
		return store.Collection{}, classifyErr(err)
	}
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	return c, nil
}

func (s *Store) ListCollections(ctx context.Context) ([]store.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, description, created_at FROM collections ORDER BY name`)
	if err != nil {
		return nil, classifyErr(err)
	}
	defer rows.Close()
	var out []store.Collection
	for rows.Next() {
		var c store.Collection
		var createdAt int64
		if err := rows.Scan(&c.Name, &c.Description, &createdAt); err != nil {
			return nil, classifyErr(err)
		}
		c.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) AssignCollection(ctx context.Context, checksum store.Checksum, collectionName string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE snippets SET collection = ? WHERE checksum = ?`, nullableString(collectionName), checksum[:])
	if err != nil {
		return classifyErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) AppendVersion(ctx context.Context, v store.SnippetVersion) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO snippet_versions(name, checksum, code, minhash, created_at) VALUES (?, ?, ?, ?, ?)`,
		v.Name, v.Checksum[:], v.Code, v.MinHash, time.Now().Unix())
	return classifyErr(err)
}

func (s *Store) Delete(ctx context.Context, checksum store.Checksum) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyErr(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM snippets WHERE checksum = ?`, checksum[:])
	if err != nil {
		return classifyErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snippet_names WHERE checksum = ?`, checksum[:]); err != nil {
		return classifyErr(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snippet_tags WHERE checksum = ?`, checksum[:]); err != nil {
		return classifyErr(err)
	}
	return commitOrErr(tx)
}

func (s *Store) IterAll(ctx context.Context, fn func(store.Snippet) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT checksum FROM snippets ORDER BY checksum ASC`)
	if err != nil {
		return classifyErr(err)
	}
	var all []store.Checksum
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return classifyErr(err)
		}
		var cs store.Checksum
		copy(cs[:], raw)
		all = append(all, cs)
	}
	rows.Close()

	for _, cs := range all {
		sn, err := s.GetByChecksum(ctx, cs)
		if err != nil {
			return err
		}
		if err := fn(sn); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Merge(ctx context.Context, other store.Backend) error {
	return store.GenericMerge(ctx, s, other)
}

func (s *Store) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `VACUUM`)
	return classifyErr(err)
}

func (s *Store) Ping(ctx context.Context) error {
	return classifyErr(s.db.PingContext(ctx))
}

func (s *Store) Close() error {
	return s.db.Close()
}

package store

import (
	"context"
	"errors"
)

// GenericMerge implements the merge(other_db) contract against any two
// Backends: for each snippet in src, upsert into dst; on
// checksum collision, union names and tags; a name whose binding moves to a
// different checksum is logged as a SnippetVersion. It is shared by every
// Backend implementation so the rebinding rule has one definition.
func GenericMerge(ctx context.Context, dst, src Backend) error {
	return src.IterAll(ctx, func(s Snippet) error {
		if len(s.Names) == 0 {
			return nil
		}
		if _, err := RebindOrAdopt(ctx, dst, s.Names[0], s); err != nil {
			return err
		}
		for _, name := range s.Names[1:] {
			if _, err := RebindOrAdopt(ctx, dst, name, s); err != nil {
				return err
			}
		}
		for _, tag := range s.Tags {
			if err := dst.AddTag(ctx, s.Checksum, tag); err != nil && !errors.Is(err, ErrAlreadyExists) {
				return err
			}
		}
		if s.CollectionRef != "" {
			if err := dst.AssignCollection(ctx, s.Checksum, s.CollectionRef); err != nil {
				return err
			}
		}
		return nil
	})
}

// RebindOrAdopt ensures name is bound to s.Checksum in dst, moving it off
// whatever snippet (if any) currently owns it and logging the move as a
// SnippetVersion. Callers that need to keep a secondary index (such as the
// LSH index) in sync should compare the checksum's existence before and
// after the call to tell a fresh row from an alias/rebind.
func RebindOrAdopt(ctx context.Context, dst Backend, name string, s Snippet) (UpsertResult, error) {
	prior, err := dst.GetByName(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		// Name unused locally: either creates the snippet (if this is its
		// first name) or attaches as an additional alias.
		if existing, getErr := dst.GetByChecksum(ctx, s.Checksum); getErr == nil {
			_ = existing
			return Aliased, dst.AddName(ctx, s.Checksum, name)
		}
		return dst.UpsertSnippet(ctx, s.Checksum, s.Code, s.MinHash, name)
	case err != nil:
		return 0, err
	case prior.Checksum == s.Checksum:
		return Aliased, nil // already bound correctly
	default:
		// Rebind: move the name off its old owner, onto s.Checksum.
		if len(prior.Names) <= 1 {
			if err := dst.Delete(ctx, prior.Checksum); err != nil {
				return 0, err
			}
		} else if err := dst.RemoveName(ctx, prior.Checksum, name); err != nil {
			return 0, err
		}

		if _, getErr := dst.GetByChecksum(ctx, s.Checksum); getErr == nil {
			if err := dst.AddName(ctx, s.Checksum, name); err != nil {
				return 0, err
			}
		} else {
			if _, err := dst.UpsertSnippet(ctx, s.Checksum, s.Code, s.MinHash, name); err != nil {
				return 0, err
			}
		}

		if err := dst.AppendVersion(ctx, SnippetVersion{
			Name:     name,
			Checksum: s.Checksum,
			Code:     s.Code,
			MinHash:  s.MinHash,
		}); err != nil {
			return 0, err
		}
		return Aliased, nil
	}
}

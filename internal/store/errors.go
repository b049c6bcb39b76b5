package store

import "errors"

// Sentinel error kinds returned at the Storage boundary. All
// are plain enums wrapped with fmt.Errorf("%w: ...", ...) by implementations
// for context; callers compare with errors.Is.
var (
	// ErrNotFound: no snippet / collection / tag matches.
	ErrNotFound = errors.New("store: not found")
	// ErrAmbiguous: a checksum prefix or name matches more than one row.
	ErrAmbiguous = errors.New("store: ambiguous match")
	// ErrAlreadyExists: a unique constraint would be violated, e.g. adding
	// an alias already present on a different snippet.
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrEmptyAliasSet: removing a name would leave a snippet with zero
	// names.
	ErrEmptyAliasSet = errors.New("store: cannot remove last name")
	// ErrTransientStorage: the caller may retry the operation.
	ErrTransientStorage = errors.New("store: transient storage error")
	// ErrPermanentStorage: the failure is fatal and must not be retried.
	ErrPermanentStorage = errors.New("store: permanent storage error")
)

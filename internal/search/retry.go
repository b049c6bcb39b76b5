package search

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"

	"github.com/maci0/resembl/internal/store"
)

// withRetry runs op with exponential backoff whenever it fails with
// store.ErrTransientStorage, giving up and returning the last error once
// the backoff policy is exhausted or the error is anything else.
func withRetry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, store.ErrTransientStorage) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}

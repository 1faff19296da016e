package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrLocked is returned by Lock when another holder owns the key.
var ErrLocked = errors.New("cache: lock held")

// Lock acquires key for at most ttl. It does not wait: a held key returns
// ErrLocked at once. The returned release deletes the key only if this caller
// still owns it, so an expired lock re-acquired by someone else is left alone.
func Lock(ctx context.Context, c Cache, key string, ttl time.Duration) (release func(), err error) {
	token := uuid.NewString()
	ok, err := c.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, fmt.Errorf("cache: lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		// The caller's ctx may already be cancelled; release must still run.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_, _ = c.DelIfEqual(relCtx, key, token)
	}, nil
}

// PairKey builds a lock key for an unordered pair: (a, b) and (b, a) map to
// the same key.
func PairKey(prefix string, a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("lock:%s:%d_%d", prefix, a, b)
}

package adapter

import (
	"context"
	"time"
)

// Locker provides per-record mutual exclusion for subscription mutations.
// Two concurrent retries against the same record must not interleave their
// read-modify-write cycles.
type Locker interface {
	// TryLock acquires the named lock and returns an opaque token that must
	// be presented to Unlock. Fails with domain.ErrRecordLocked when the
	// lock is held elsewhere.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

package store

import (
	"context"
	"time"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

// AcquireLock acquires the named TTL lock. The existence check and the
// insert are a single atomic statement, so two concurrent callers can never
// both succeed: the upsert only lands when no row exists or the existing
// row has expired. Returns false on contention.
func (s *Store) AcquireLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO sync_locks (name, expires_at)
		VALUES ($1, now() + make_interval(secs => $2))
		ON CONFLICT (name) DO UPDATE
			SET expires_at = EXCLUDED.expires_at
			WHERE sync_locks.expires_at <= now()`,
		name, ttl.Seconds(),
	)
	if err != nil {
		return false, errors.WrapStore("insert", "sync_locks", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ReleaseLock deletes the named lock. Idempotent: releasing a lock that was
// never acquired or already released is not an error.
func (s *Store) ReleaseLock(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sync_locks WHERE name = $1`, name)
	return errors.WrapStore("delete", "sync_locks", err)
}

// SweepExpiredLocks deletes every lock past its expiry, recovering locks
// abandoned by crashed or timed-out holders.
func (s *Store) SweepExpiredLocks(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sync_locks WHERE expires_at <= now()`)
	if err != nil {
		return 0, errors.WrapStore("delete", "sync_locks", err)
	}
	return tag.RowsAffected(), nil
}

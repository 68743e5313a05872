package store

import (
	"context"
	"time"

	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// Get returns the live catalog snapshot for a provider. Expired or absent
// snapshots yield ErrCacheMiss; callers fall back to a live fetch.
// Implements sources.SnapshotStore.
func (s *Store) Get(ctx context.Context, provider vehicles.ProviderID) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM provider_cache
		WHERE provider = $1 AND expires_at > now()`,
		provider.String(),
	).Scan(&payload)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.ErrCacheMiss
		}
		return nil, errors.WrapStore("select", "provider_cache", err)
	}
	return payload, nil
}

// Replace deletes the provider's existing snapshot and inserts the new one
// in a single transaction, keeping the one-live-row-per-provider invariant.
// Implements sources.SnapshotStore.
func (s *Store) Replace(ctx context.Context, provider vehicles.ProviderID, payload []byte, ttl time.Duration) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.WrapStore("begin", "provider_cache", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM provider_cache WHERE provider = $1`, provider.String()); err != nil {
		return errors.WrapStore("delete", "provider_cache", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO provider_cache (provider, payload, fetched_at, expires_at)
		VALUES ($1, $2, now(), now() + make_interval(secs => $3))`,
		provider.String(), payload, ttl.Seconds(),
	); err != nil {
		return errors.WrapStore("insert", "provider_cache", err)
	}

	return errors.WrapStore("commit", "provider_cache", tx.Commit(ctx))
}

// DeleteSnapshot force-invalidates a provider's cached catalog, used by
// override requests with clear_cache set.
func (s *Store) DeleteSnapshot(ctx context.Context, provider vehicles.ProviderID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM provider_cache WHERE provider = $1`, provider.String())
	return errors.WrapStore("delete", "provider_cache", err)
}

// PruneExpiredSnapshots deletes snapshots past their expiry.
func (s *Store) PruneExpiredSnapshots(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM provider_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, errors.WrapStore("delete", "provider_cache", err)
	}
	return tag.RowsAffected(), nil
}

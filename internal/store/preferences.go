package store

import (
	"context"

	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// GetPreference returns the manual source preference for a slug, or
// ErrNotFound when none has been recorded.
func (s *Store) GetPreference(ctx context.Context, slug string) (*vehicles.SourcePreference, error) {
	var p vehicles.SourcePreference
	var preferred string
	err := s.pool.QueryRow(ctx, `
		SELECT slug, preferred, reason, clear_cache, updated_at
		FROM source_preferences WHERE slug = $1`,
		slug,
	).Scan(&p.Slug, &preferred, &p.Reason, &p.ClearCache, &p.UpdatedAt.Time)
	if err != nil {
		if isNoRows(err) {
			return nil, &errors.NotFoundError{Resource: "source preference", Key: slug}
		}
		return nil, errors.WrapStore("select", "source_preferences", err)
	}
	p.Preferred = vehicles.ProviderID(preferred)
	return &p, nil
}

// UpsertPreference records an administrator's source override for a slug.
// Preferences are consulted on every subsequent reconciliation and never
// auto-deleted.
func (s *Store) UpsertPreference(ctx context.Context, p *vehicles.SourcePreference) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO source_preferences (slug, preferred, reason, clear_cache, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (slug) DO UPDATE SET
			preferred   = EXCLUDED.preferred,
			reason      = EXCLUDED.reason,
			clear_cache = EXCLUDED.clear_cache,
			updated_at  = now()`,
		p.Slug, p.Preferred.String(), p.Reason, p.ClearCache,
	)
	return errors.WrapStore("upsert", "source_preferences", err)
}

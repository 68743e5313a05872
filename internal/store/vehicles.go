package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// GetVehicle returns the stored canonical record for a slug, or ErrNotFound.
func (s *Store) GetVehicle(ctx context.Context, slug string) (*vehicles.Vehicle, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT slug, name, fields, content_hash, image_url, model_url,
		       provenance, raw_payloads, created_at, updated_at
		FROM vehicles WHERE slug = $1`,
		slug,
	)
	return scanVehicle(row)
}

// ListVehicles returns all canonical records ordered by slug, serving the
// presentation layer's read-only query interface.
func (s *Store) ListVehicles(ctx context.Context) ([]*vehicles.Vehicle, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT slug, name, fields, content_hash, image_url, model_url,
		       provenance, raw_payloads, created_at, updated_at
		FROM vehicles ORDER BY slug`)
	if err != nil {
		return nil, errors.WrapStore("select", "vehicles", err)
	}
	defer rows.Close()

	var out []*vehicles.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, errors.WrapStore("select", "vehicles", rows.Err())
}

// ListVehicleNames returns every canonical name and slug, used by the rumor
// pipeline to filter candidates that match an already-confirmed vehicle.
func (s *Store) ListVehicleNames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT slug, name FROM vehicles`)
	if err != nil {
		return nil, errors.WrapStore("select", "vehicles", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var slug, name string
		if err := rows.Scan(&slug, &name); err != nil {
			return nil, errors.WrapStore("scan", "vehicles", err)
		}
		names = append(names, slug, name)
	}
	return names, errors.WrapStore("select", "vehicles", rows.Err())
}

// UpsertVehicle writes a reconciled record. Inserts a new slug or replaces
// every canonical column of an existing one; UpdatedAt comes from the
// record so the idempotent skip path never touches it.
func (s *Store) UpsertVehicle(ctx context.Context, v *vehicles.Vehicle) error {
	fields, err := json.Marshal(v.Fields)
	if err != nil {
		return errors.WrapParse("json", "vehicle fields", err)
	}
	provenance, err := json.Marshal(v.Provenance)
	if err != nil {
		return errors.WrapParse("json", "vehicle provenance", err)
	}
	var raw []byte
	if len(v.Raw) > 0 {
		if raw, err = json.Marshal(v.Raw); err != nil {
			return errors.WrapParse("json", "vehicle raw payloads", err)
		}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO vehicles (slug, name, fields, content_hash, image_url,
		                      model_url, provenance, raw_payloads, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (slug) DO UPDATE SET
			name         = EXCLUDED.name,
			fields       = EXCLUDED.fields,
			content_hash = EXCLUDED.content_hash,
			image_url    = EXCLUDED.image_url,
			model_url    = EXCLUDED.model_url,
			provenance   = EXCLUDED.provenance,
			raw_payloads = EXCLUDED.raw_payloads,
			updated_at   = EXCLUDED.updated_at`,
		v.Slug, v.Name, fields, v.ContentHash, v.ImageURL, v.ModelURL,
		provenance, raw, v.CreatedAt.Time, v.UpdatedAt.Time,
	)
	return errors.WrapStore("upsert", "vehicles", err)
}

// PruneRawPayloads nulls the per-provider raw payloads of every vehicle not
// updated within the retention window. Canonical fields are untouched.
// When no vehicle falls inside the window all rows are eligible.
func (s *Store) PruneRawPayloads(ctx context.Context, window time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE vehicles SET raw_payloads = NULL
		WHERE raw_payloads IS NOT NULL
		  AND updated_at < now() - make_interval(secs => $1)`,
		window.Seconds(),
	)
	if err != nil {
		return 0, errors.WrapStore("update", "vehicles", err)
	}
	return tag.RowsAffected(), nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanVehicle.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVehicle(row rowScanner) (*vehicles.Vehicle, error) {
	var (
		v          vehicles.Vehicle
		fields     []byte
		provenance []byte
		raw        []byte
	)
	err := row.Scan(&v.Slug, &v.Name, &fields, &v.ContentHash, &v.ImageURL,
		&v.ModelURL, &provenance, &raw, &v.CreatedAt.Time, &v.UpdatedAt.Time)
	if err != nil {
		if isNoRows(err) {
			return nil, &errors.NotFoundError{Resource: "vehicle", Key: v.Slug}
		}
		return nil, errors.WrapStore("scan", "vehicles", err)
	}

	if err := json.Unmarshal(fields, &v.Fields); err != nil {
		return nil, errors.WrapParse("json", "vehicle fields", err)
	}
	if err := json.Unmarshal(provenance, &v.Provenance); err != nil {
		return nil, errors.WrapParse("json", "vehicle provenance", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v.Raw); err != nil {
			return nil, errors.WrapParse("json", "vehicle raw payloads", err)
		}
	}
	return &v, nil
}

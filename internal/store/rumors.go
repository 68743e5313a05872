package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// GetRumorByCodename returns the rumor matching a codename
// case-insensitively, or ErrNotFound.
func (s *Store) GetRumorByCodename(ctx context.Context, codename string) (*vehicles.Rumor, error) {
	row := s.pool.QueryRow(ctx, rumorSelect+` WHERE lower(codename) = lower($1)`, codename)
	r, err := scanRumor(row)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, &errors.NotFoundError{Resource: "rumor", Key: codename}
		}
		return nil, err
	}
	return r, nil
}

// ListRumors returns rumor records, optionally restricted to active ones,
// most recently updated first.
func (s *Store) ListRumors(ctx context.Context, activeOnly bool) ([]*vehicles.Rumor, error) {
	query := rumorSelect + ` ORDER BY updated_at DESC`
	if activeOnly {
		query = rumorSelect + ` WHERE active ORDER BY updated_at DESC`
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, errors.WrapStore("select", "rumors", err)
	}
	defer rows.Close()

	var out []*vehicles.Rumor
	for rows.Next() {
		r, err := scanRumor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, errors.WrapStore("select", "rumors", rows.Err())
}

// InsertRumor creates a new rumor record, generating its id. A concurrent
// insert of the same codename surfaces as a unique violation the caller may
// retry as an update.
func (s *Store) InsertRumor(ctx context.Context, r *vehicles.Rumor) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	evidence, err := json.Marshal(r.Evidence)
	if err != nil {
		return errors.WrapParse("json", "rumor evidence", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO rumors (id, codename, possible_name, manufacturer, stage,
		                    source_type, source_url, source_date, evidence,
		                    notes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, now(), now())`,
		r.ID, r.Codename, r.PossibleName, r.Manufacturer, r.Stage.String(),
		string(r.SourceType), r.SourceURL, r.SourceDate.Time, evidence, r.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.WrapStore("insert", "rumors", errors.New("codename already exists"))
		}
		return errors.WrapStore("insert", "rumors", err)
	}
	return nil
}

// UpdateRumor persists merged scalar fields and the evidence list of an
// existing rumor.
func (s *Store) UpdateRumor(ctx context.Context, r *vehicles.Rumor) error {
	evidence, err := json.Marshal(r.Evidence)
	if err != nil {
		return errors.WrapParse("json", "rumor evidence", err)
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE rumors
		SET possible_name = $2,
		    manufacturer = $3,
		    stage = $4,
		    source_type = $5,
		    source_url = $6,
		    source_date = $7,
		    evidence = $8,
		    notes = $9,
		    active = $10,
		    updated_at = now()
		WHERE id = $1`,
		r.ID, r.PossibleName, r.Manufacturer, r.Stage.String(),
		string(r.SourceType), r.SourceURL, r.SourceDate.Time, evidence, r.Notes, r.Active,
	)
	return errors.WrapStore("update", "rumors", err)
}

const rumorSelect = `
	SELECT id, codename, possible_name, manufacturer, stage, source_type,
	       source_url, source_date, evidence, notes, active, confirmed_slug,
	       created_at, updated_at
	FROM rumors`

func scanRumor(row rowScanner) (*vehicles.Rumor, error) {
	var (
		r             vehicles.Rumor
		stage         string
		sourceType    string
		sourceDate    *time.Time
		evidence      []byte
		confirmedSlug *string
	)
	err := row.Scan(&r.ID, &r.Codename, &r.PossibleName, &r.Manufacturer,
		&stage, &sourceType, &r.SourceURL, &sourceDate, &evidence,
		&r.Notes, &r.Active, &confirmedSlug, &r.CreatedAt.Time, &r.UpdatedAt.Time)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.WrapStore("scan", "rumors", err)
	}

	r.Stage = vehicles.Stage(stage)
	r.SourceType = vehicles.SourceType(sourceType)
	if sourceDate != nil {
		r.SourceDate.Time = *sourceDate
	}
	if confirmedSlug != nil {
		r.ConfirmedSlug = *confirmedSlug
	}
	if err := json.Unmarshal(evidence, &r.Evidence); err != nil {
		return nil, errors.WrapParse("json", "rumor evidence", err)
	}
	return &r, nil
}

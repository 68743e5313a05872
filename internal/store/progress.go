package store

import (
	"context"
	"time"

	"github.com/agentstation/utc"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

// Progress statuses.
const (
	StatusRunning   = "running"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// ProgressEntry is one row of the job ledger.
type ProgressEntry struct {
	ID          int64      `json:"id"`
	Job         string     `json:"job"`
	Status      string     `json:"status"`
	StartedAt   utc.Time   `json:"started_at"`
	CompletedAt *utc.Time  `json:"completed_at,omitempty"`
	DurationMs  *int64     `json:"duration_ms,omitempty"`
	ItemCount   int        `json:"item_count"`
	Error       string     `json:"error,omitempty"`
}

// StartProgress creates a running ledger row for a job invocation and
// returns its id.
func (s *Store) StartProgress(ctx context.Context, job string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sync_progress (job, status, started_at)
		VALUES ($1, $2, now())
		RETURNING id`,
		job, StatusRunning,
	).Scan(&id)
	if err != nil {
		return 0, errors.WrapStore("insert", "sync_progress", err)
	}
	return id, nil
}

// FinishProgress writes the terminal state of a ledger row: status,
// completion time, duration, item count and error message.
func (s *Store) FinishProgress(ctx context.Context, id int64, status string, itemCount int, jobErr string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sync_progress
		SET status = $2,
		    completed_at = now(),
		    duration_ms = (extract(epoch FROM now() - started_at) * 1000)::bigint,
		    item_count = $3,
		    error = $4
		WHERE id = $1`,
		id, status, itemCount, jobErr,
	)
	return errors.WrapStore("update", "sync_progress", err)
}

// CancelStuckProgress transitions running rows older than the timeout to
// cancelled, stamping a completion time and an explanatory message. These
// are jobs whose holders crashed or overran; only the bookkeeping is
// recovered, the process itself is not terminated.
func (s *Store) CancelStuckProgress(ctx context.Context, timeout time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sync_progress
		SET status = $1,
		    completed_at = now(),
		    error = 'cancelled by cleanup: exceeded run timeout'
		WHERE status = $2
		  AND started_at < now() - make_interval(secs => $3)`,
		StatusCancelled, StatusRunning, timeout.Seconds(),
	)
	if err != nil {
		return 0, errors.WrapStore("update", "sync_progress", err)
	}
	return tag.RowsAffected(), nil
}

// PruneProgress deletes ledger rows older than the retention window
// regardless of terminal state.
func (s *Store) PruneProgress(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM sync_progress
		WHERE started_at < now() - make_interval(secs => $1)`,
		retention.Seconds(),
	)
	if err != nil {
		return 0, errors.WrapStore("delete", "sync_progress", err)
	}
	return tag.RowsAffected(), nil
}

// ListProgress returns the most recent ledger rows, newest first.
func (s *Store) ListProgress(ctx context.Context, limit int) ([]ProgressEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, job, status, started_at, completed_at, duration_ms, item_count, error
		FROM sync_progress
		ORDER BY started_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, errors.WrapStore("select", "sync_progress", err)
	}
	defer rows.Close()

	var out []ProgressEntry
	for rows.Next() {
		var (
			e           ProgressEntry
			completedAt *time.Time
		)
		if err := rows.Scan(&e.ID, &e.Job, &e.Status, &e.StartedAt.Time,
			&completedAt, &e.DurationMs, &e.ItemCount, &e.Error); err != nil {
			return nil, errors.WrapStore("scan", "sync_progress", err)
		}
		if completedAt != nil {
			t := utc.Time{Time: *completedAt}
			e.CompletedAt = &t
		}
		out = append(out, e)
	}
	return out, errors.WrapStore("select", "sync_progress", rows.Err())
}

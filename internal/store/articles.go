package store

import (
	"context"
	"time"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

// ArticleRetention parameterizes PruneArticles. Categories listed in Exempt
// are never pruned. Categories listed in KeepRecent retain their KeepCount
// newest rows even past the cutoff.
type ArticleRetention struct {
	MaxAge     time.Duration
	Exempt     []string
	KeepRecent []string
	KeepCount  int
}

// PruneArticles deletes stale rows per the retention policy. It reports how
// many were removed and how many past-cutoff rows the policy retained.
func (s *Store) PruneArticles(ctx context.Context, policy ArticleRetention) (pruned, kept int64, err error) {
	// Nil slices would encode as NULL arrays and poison the ANY checks.
	exempt := append([]string{}, policy.Exempt...)
	keepRecent := append([]string{}, policy.KeepRecent...)

	err = s.pool.QueryRow(ctx, `
		WITH ranked AS (
			SELECT category, published_at,
			       row_number() OVER (PARTITION BY category ORDER BY published_at DESC) AS rn
			FROM articles
		)
		SELECT count(*) FROM ranked r
		WHERE r.published_at < now() - make_interval(secs => $1)
		  AND (r.category = ANY($2) OR (r.category = ANY($3) AND r.rn <= $4))`,
		policy.MaxAge.Seconds(), exempt, keepRecent, policy.KeepCount,
	).Scan(&kept)
	if err != nil {
		return 0, 0, errors.WrapStore("count", "articles", err)
	}

	tag, err := s.pool.Exec(ctx, `
		WITH ranked AS (
			SELECT id, category, published_at,
			       row_number() OVER (PARTITION BY category ORDER BY published_at DESC) AS rn
			FROM articles
		)
		DELETE FROM articles a
		USING ranked r
		WHERE a.id = r.id
		  AND r.published_at < now() - make_interval(secs => $1)
		  AND NOT (r.category = ANY($2))
		  AND (NOT (r.category = ANY($3)) OR r.rn > $4)`,
		policy.MaxAge.Seconds(), exempt, keepRecent, policy.KeepCount,
	)
	if err != nil {
		return 0, kept, errors.WrapStore("delete", "articles", err)
	}
	return tag.RowsAffected(), kept, nil
}

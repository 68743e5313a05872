// Package store implements the relational persistence layer on PostgreSQL.
// All cross-invocation coordination state (named locks, the progress ledger,
// provider catalog snapshots) lives here; the store is the single source of
// truth for concurrency control between job invocations.
package store

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

// Store wraps a pgx connection pool with typed accessors per table family.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and returns a Store.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.WrapStore("connect", "", err)
	}

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, errors.WrapStore("connect", "", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity, used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return errors.WrapStore("ping", "", s.pool.Ping(ctx))
}

package store

import (
	"context"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

// schema is the table layout the store reads and writes. Migration
// mechanics beyond these shapes belong to the deployment, not the core.
const schema = `
CREATE TABLE IF NOT EXISTS vehicles (
	slug         text PRIMARY KEY,
	name         text NOT NULL,
	fields       jsonb NOT NULL DEFAULT '{}'::jsonb,
	content_hash text NOT NULL,
	image_url    text NOT NULL DEFAULT '',
	model_url    text NOT NULL DEFAULT '',
	provenance   jsonb NOT NULL DEFAULT '{}'::jsonb,
	raw_payloads jsonb,
	created_at   timestamptz NOT NULL DEFAULT now(),
	updated_at   timestamptz NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS vehicles_content_hash ON vehicles (content_hash);

CREATE TABLE IF NOT EXISTS source_preferences (
	slug        text PRIMARY KEY,
	preferred   text NOT NULL,
	reason      text NOT NULL DEFAULT '',
	clear_cache boolean NOT NULL DEFAULT false,
	updated_at  timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS provider_cache (
	provider   text PRIMARY KEY,
	payload    jsonb NOT NULL,
	fetched_at timestamptz NOT NULL DEFAULT now(),
	expires_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_locks (
	name       text PRIMARY KEY,
	expires_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_progress (
	id           bigserial PRIMARY KEY,
	job          text NOT NULL,
	status       text NOT NULL,
	started_at   timestamptz NOT NULL DEFAULT now(),
	completed_at timestamptz,
	duration_ms  bigint,
	item_count   integer NOT NULL DEFAULT 0,
	error        text NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS sync_progress_started ON sync_progress (started_at);

CREATE TABLE IF NOT EXISTS rumors (
	id             uuid PRIMARY KEY,
	codename       text NOT NULL,
	possible_name  text NOT NULL DEFAULT '',
	manufacturer   text NOT NULL DEFAULT '',
	stage          text NOT NULL DEFAULT 'unknown',
	source_type    text NOT NULL DEFAULT '',
	source_url     text NOT NULL DEFAULT '',
	source_date    timestamptz,
	evidence       jsonb NOT NULL DEFAULT '[]'::jsonb,
	notes          text NOT NULL DEFAULT '',
	active         boolean NOT NULL DEFAULT true,
	confirmed_slug text,
	created_at     timestamptz NOT NULL DEFAULT now(),
	updated_at     timestamptz NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS rumors_codename ON rumors (lower(codename));

CREATE TABLE IF NOT EXISTS articles (
	id           bigserial PRIMARY KEY,
	category     text NOT NULL,
	title        text NOT NULL,
	url          text NOT NULL DEFAULT '',
	published_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS articles_category_published ON articles (category, published_at DESC);

CREATE TABLE IF NOT EXISTS audit_log (
	id         bigserial PRIMARY KEY,
	job        text NOT NULL,
	action     text NOT NULL,
	detail     jsonb NOT NULL DEFAULT '{}'::jsonb,
	created_at timestamptz NOT NULL DEFAULT now()
);
`

// EnsureSchema creates any missing tables and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return errors.WrapStore("create", "schema", err)
}

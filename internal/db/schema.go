package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema. Statements are idempotent so both binaries can
// run it at start without coordination.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id          UUID PRIMARY KEY,
		first_name  TEXT NOT NULL,
		last_name   TEXT NOT NULL,
		email       TEXT NOT NULL,
		phone       TEXT NOT NULL DEFAULT '',
		password    TEXT NOT NULL,
		balance     BIGINT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS users_email_uniq ON users (email);

	CREATE TABLE IF NOT EXISTS courses (
		id           UUID PRIMARY KEY,
		title        TEXT NOT NULL,
		price        BIGINT NOT NULL DEFAULT 0,
		image        TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		topics       TEXT[] NOT NULL DEFAULT '{}',
		meeting_link TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS enrollments (
		id                 UUID PRIMARY KEY,
		user_id            UUID NOT NULL REFERENCES users(id),
		user_name          TEXT NOT NULL,
		user_phone         TEXT NOT NULL DEFAULT '',
		course_id          UUID NOT NULL REFERENCES courses(id),
		course_title       TEXT NOT NULL,
		course_price       BIGINT NOT NULL DEFAULT 0,
		course_image       TEXT NOT NULL DEFAULT '',
		course_description TEXT NOT NULL DEFAULT '',
		course_topics      TEXT[] NOT NULL DEFAULT '{}',
		meeting_link       TEXT NOT NULL DEFAULT '',
		created_at         TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS enrollments_user_idx ON enrollments (user_id, created_at, id);

	CREATE TABLE IF NOT EXISTS jobs (
		id              UUID PRIMARY KEY,
		type            TEXT NOT NULL,
		payload         JSONB NOT NULL,
		status          TEXT NOT NULL,
		attempts        INT NOT NULL DEFAULT 0,
		max_attempts    INT NOT NULL DEFAULT 10,
		run_at          TIMESTAMPTZ NOT NULL,
		locked_at       TIMESTAMPTZ,
		locked_by       TEXT,
		last_error      TEXT,
		idempotency_key TEXT,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS jobs_idempotency_key_uniq ON jobs (idempotency_key) WHERE idempotency_key IS NOT NULL;
	CREATE INDEX IF NOT EXISTS jobs_claim_idx ON jobs (status, run_at, created_at);
	`

	_, err := pool.Exec(ctx, schema)
	return err
}

// internal/storage/migrate.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations run in order and are idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		tier TEXT NOT NULL DEFAULT 'cool_kid',
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		version INT NOT NULL DEFAULT 1,
		CONSTRAINT members_email_key UNIQUE (email)
	)`,
	// Enforces the enrichment uniqueness key at the store level; the
	// predicate leaves unenriched members (empty fields) out of it.
	`CREATE UNIQUE INDEX IF NOT EXISTS members_name_pair_key
		ON members (first_name, last_name)
		WHERE first_name <> '' AND last_name <> ''`,
	`CREATE TABLE IF NOT EXISTS credentials (
		member_id BIGINT PRIMARY KEY REFERENCES members(id) ON DELETE CASCADE,
		password_hash TEXT NOT NULL,
		salt TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS member_events (
		id BIGSERIAL PRIMARY KEY,
		member_id BIGINT NOT NULL,
		event_type TEXT NOT NULL,
		event_data JSONB NOT NULL,
		metadata JSONB,
		version INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT member_events_version_key UNIQUE (member_id, version)
	)`,
}

// Migrate creates the schema if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

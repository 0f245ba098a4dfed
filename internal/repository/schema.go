package repository

import (
	"context"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
)

// ddl is intentionally limited to types that behave the same on
// sqlite and postgres.
const ddl = `
CREATE TABLE IF NOT EXISTS vault_files (
	id            TEXT PRIMARY KEY,
	source_path   TEXT NOT NULL,
	filename      TEXT NOT NULL,
	file_ext      TEXT NOT NULL,
	file_size     INTEGER NOT NULL,
	content_hash  TEXT NOT NULL,
	discovered_at TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS vault_files_content_hash ON vault_files (content_hash);

CREATE TABLE IF NOT EXISTS parse_jobs (
	id             TEXT PRIMARY KEY,
	file_id        TEXT NOT NULL,
	status         TEXT NOT NULL,
	outcome        TEXT,
	status_message TEXT,
	token_count    INTEGER NOT NULL DEFAULT 0,
	tokens_json    TEXT,
	email          TEXT,
	password       TEXT,
	error_message  TEXT,
	started_at     TIMESTAMP NOT NULL,
	finished_at    TIMESTAMP,
	duration_ms    BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS parse_jobs_file_id ON parse_jobs (file_id);
`

// Migrate applies the embedded schema. Statements are idempotent, so
// running it at every open is safe.
func Migrate(ctx context.Context, drv *entsql.Driver) error {
	for _, stmt := range strings.Split(ddl, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := drv.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

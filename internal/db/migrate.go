package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent, so the
// full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillNoteStatus(db); err != nil {
		return fmt.Errorf("backfilling note status: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		short_id    TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'active'
		            CHECK(status IN ('active','archived')),
		archived_at TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_short_id ON projects(short_id) WHERE short_id != ''`,

	`CREATE TABLE IF NOT EXISTS notes (
		id                 TEXT PRIMARY KEY,
		title              TEXT NOT NULL DEFAULT '',
		content            TEXT NOT NULL DEFAULT '',
		tags               TEXT NOT NULL DEFAULT '[]',
		project_id         TEXT REFERENCES projects(id) ON DELETE SET NULL,
		status             TEXT NOT NULL DEFAULT 'draft',
		priority           TEXT NOT NULL DEFAULT '',
		target_release     TEXT NOT NULL DEFAULT '',
		due_date           TEXT,
		generated_features TEXT NOT NULL DEFAULT '[]',
		generated_tasks    TEXT NOT NULL DEFAULT '[]',
		canvas_data        TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notes_project ON notes(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at)`,

	// Stakeholders were added after the first release of the notes table.
	`ALTER TABLE notes ADD COLUMN stakeholders TEXT NOT NULL DEFAULT '[]'`,
}

// migrateBackfillNoteStatus assigns the draft status to rows written before
// the status column had a default. Idempotent.
func migrateBackfillNoteStatus(db *sql.DB) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `UPDATE notes SET status = 'draft' WHERE status = ''`); err != nil {
		return fmt.Errorf("updating empty statuses: %w", err)
	}
	return nil
}

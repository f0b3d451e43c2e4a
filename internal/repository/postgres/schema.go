package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema creates the drive tables when they do not exist.
// position keeps insertion order, which every List returns.
func EnsureSchema(ctx context.Context, config *RepositoryConfig) error {
	t := config.Tables
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				position   BIGSERIAL,
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL,
				parent_id  TEXT,
				path       TEXT NOT NULL,
				color      TEXT NOT NULL DEFAULT '',
				icon       TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`, t.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_id_idx ON %s (parent_id)`, t.Folders, t.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				position    BIGSERIAL,
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				size        BIGINT NOT NULL DEFAULT 0,
				type        TEXT NOT NULL DEFAULT '',
				status      TEXT NOT NULL,
				progress    INTEGER NOT NULL DEFAULT 0,
				folder_id   TEXT,
				url         TEXT NOT NULL DEFAULT '',
				thumbnail   TEXT NOT NULL DEFAULT '',
				uploaded_at TIMESTAMPTZ NOT NULL,
				updated_at  TIMESTAMPTZ
			)`, t.Files),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_folder_id_idx ON %s (folder_id)`, t.Files, t.Files),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				position       BIGSERIAL,
				id             TEXT PRIMARY KEY,
				file_ids       TEXT[] NOT NULL DEFAULT '{}',
				total_size     BIGINT NOT NULL DEFAULT 0,
				completed_size BIGINT NOT NULL DEFAULT 0,
				status         TEXT NOT NULL,
				started_at     TIMESTAMPTZ NOT NULL,
				finished_at    TIMESTAMPTZ
			)`, t.UploadSessions),
	}

	executor := executorFor(ctx, config.Pool)
	for _, stmt := range statements {
		if _, err := executor.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	if config.Logger != nil {
		config.Logger.Info("database schema ready",
			"folders", t.Folders,
			"files", t.Files,
			"upload_sessions", t.UploadSessions,
		)
	}
	return nil
}

// DropSchema removes the drive tables of this prefix
func DropSchema(ctx context.Context, config *RepositoryConfig) error {
	t := config.Tables
	for _, table := range []string{t.UploadSessions, t.Files, t.Folders} {
		if _, err := config.Pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

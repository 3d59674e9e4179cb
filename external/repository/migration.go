package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS interview_responses (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		call_id TEXT NOT NULL,
		phone_number TEXT NOT NULL DEFAULT '',
		question_index INTEGER NOT NULL,
		question_text TEXT NOT NULL,
		spoken_answer TEXT NOT NULL DEFAULT '',
		recording_id TEXT NOT NULL DEFAULT '',
		recording_uri TEXT NOT NULL DEFAULT '',
		recording_duration_seconds INTEGER,
		transcript_text TEXT,
		transcript_status TEXT NOT NULL DEFAULT 'pending',
		call_status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE(call_id, question_index)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interview_responses_recording ON interview_responses (recording_id) WHERE recording_id <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_interview_responses_pending ON interview_responses (transcript_status) WHERE transcript_status = 'pending'`,
}

var sqliteMigrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS interview_responses (
		id TEXT PRIMARY KEY,
		call_id TEXT NOT NULL,
		phone_number TEXT NOT NULL DEFAULT '',
		question_index INTEGER NOT NULL,
		question_text TEXT NOT NULL,
		spoken_answer TEXT NOT NULL DEFAULT '',
		recording_id TEXT NOT NULL DEFAULT '',
		recording_uri TEXT NOT NULL DEFAULT '',
		recording_duration_seconds INTEGER,
		transcript_text TEXT,
		transcript_status TEXT NOT NULL DEFAULT 'pending',
		call_status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE(call_id, question_index)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interview_responses_recording ON interview_responses (recording_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interview_responses_status ON interview_responses (transcript_status)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func RunSQLiteMigration(ctx context.Context, db *sql.DB) error {
	for _, s := range sqliteMigrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

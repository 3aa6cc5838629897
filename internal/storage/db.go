package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// NewDB opens the Postgres pool and verifies connectivity.
func NewDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates all tables and extensions the service depends on.
// Idempotent, safe to run at every startup. The vector column width must match
// the embedding dimension; changing it requires rebuilding the table.
func EnsureSchema(db *sql.DB, dimension int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS policy_chunks (
			unit_id UUID PRIMARY KEY,
			source_id TEXT NOT NULL,
			position INT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS idx_policy_chunks_source ON policy_chunks(source_id)`,
		`CREATE TABLE IF NOT EXISTS screening_runs (
			run_id UUID PRIMARY KEY,
			job_description TEXT NOT NULL,
			job_skills JSONB NOT NULL DEFAULT '[]',
			threshold DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS screening_candidates (
			id SERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES screening_runs(run_id) ON DELETE CASCADE,
			candidate_id TEXT NOT NULL,
			name TEXT,
			email TEXT,
			phone TEXT,
			experience_years INT DEFAULT 0,
			similarity_score DOUBLE PRECISION NOT NULL,
			skill_match_rate DOUBLE PRECISION NOT NULL,
			matched_skills JSONB NOT NULL DEFAULT '[]',
			missing_skills JSONB NOT NULL DEFAULT '[]',
			final_score DOUBLE PRECISION NOT NULL,
			shortlisted BOOLEAN NOT NULL DEFAULT FALSE,
			rank INT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_screening_candidates_run ON screening_candidates(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

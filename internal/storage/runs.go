package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"hr-engine/internal/recruitment"
	"hr-engine/internal/screening"
)

// ScreeningRun is a persisted screening result: the inputs that produced it
// plus the full ranked batch.
type ScreeningRun struct {
	RunID          string                `json:"run_id"`
	JobDescription string                `json:"job_description"`
	JobSkills      []string              `json:"job_skills"`
	Threshold      float64               `json:"threshold"`
	Candidates     screening.ScoredBatch `json:"candidates"`
	CreatedAt      time.Time             `json:"created_at"`
}

// RunStore persists completed screening runs so results survive restarts and
// exports can be served later.
type RunStore struct {
	db *sql.DB
}

func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// SaveRun stores the run and all its candidates in one transaction.
func (s *RunStore) SaveRun(ctx context.Context, result *recruitment.ScreenResult, jobDescription string, threshold float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	jobSkills, _ := json.Marshal(result.JobSkills)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO screening_runs (run_id, job_description, job_skills, threshold)
		VALUES ($1, $2, $3, $4)`,
		result.RunID, jobDescription, jobSkills, threshold)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	for rank, c := range result.Candidates {
		matched, _ := json.Marshal(c.MatchedSkills)
		missing, _ := json.Marshal(c.MissingSkills)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO screening_candidates
				(run_id, candidate_id, name, email, phone, experience_years,
				 similarity_score, skill_match_rate, matched_skills, missing_skills,
				 final_score, shortlisted, rank)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			result.RunID, c.CandidateID, c.Name, c.Email, c.Phone, c.ExperienceYears,
			c.SimilarityScore, c.SkillMatchRate, matched, missing,
			c.FinalScore, c.Shortlisted, rank+1)
		if err != nil {
			return fmt.Errorf("failed to save candidate: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun loads one run with its candidates in ranked order.
func (s *RunStore) GetRun(ctx context.Context, runID string) (*ScreeningRun, error) {
	run := &ScreeningRun{RunID: runID}
	var jobSkills []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT job_description, job_skills, threshold, created_at
		FROM screening_runs WHERE run_id = $1`, runID).
		Scan(&run.JobDescription, &jobSkills, &run.Threshold, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if err := json.Unmarshal(jobSkills, &run.JobSkills); err != nil {
		return nil, fmt.Errorf("failed to decode job skills: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate_id, name, email, phone, experience_years,
		       similarity_score, skill_match_rate, matched_skills, missing_skills,
		       final_score, shortlisted
		FROM screening_candidates
		WHERE run_id = $1
		ORDER BY rank ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c screening.CandidateProfile
		var matched, missing []byte
		if err := rows.Scan(&c.CandidateID, &c.Name, &c.Email, &c.Phone, &c.ExperienceYears,
			&c.SimilarityScore, &c.SkillMatchRate, &matched, &missing,
			&c.FinalScore, &c.Shortlisted); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		if err := json.Unmarshal(matched, &c.MatchedSkills); err != nil {
			return nil, fmt.Errorf("failed to decode matched skills: %w", err)
		}
		if err := json.Unmarshal(missing, &c.MissingSkills); err != nil {
			return nil, fmt.Errorf("failed to decode missing skills: %w", err)
		}
		run.Candidates = append(run.Candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}
	return run, nil
}

// ListRuns returns recent runs without their candidates, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]ScreeningRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, job_description, job_skills, threshold, created_at
		FROM screening_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []ScreeningRun{}
	for rows.Next() {
		var run ScreeningRun
		var jobSkills []byte
		if err := rows.Scan(&run.RunID, &run.JobDescription, &jobSkills, &run.Threshold, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal(jobSkills, &run.JobSkills); err != nil {
			return nil, fmt.Errorf("failed to decode job skills: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

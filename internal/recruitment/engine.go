package recruitment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"hr-engine/internal/engine"
	"hr-engine/internal/llm"
	"hr-engine/internal/screening"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resumes beyond this prefix add little to the overall-fit signal and blow
// past embedding token limits.
const maxEmbedChars = 2000

// Extractor is the structured-extraction collaborator: it turns raw resume and
// JD text into skills and profile fields so the engine only handles structured
// values.
type Extractor interface {
	ExtractResumeProfile(ctx context.Context, resumeText string) (*llm.ResumeExtraction, error)
	ExtractJobSkills(ctx context.Context, jobDescription string) ([]string, error)
}

// QuestionGenerator produces interview questions for a screened candidate.
type QuestionGenerator interface {
	InterviewQuestions(ctx context.Context, jobDescription string, matchedSkills []string, experienceYears, n int) ([]llm.InterviewQuestion, error)
}

// Resume is one screening input: extracted plain text plus a caller-assigned ID.
type Resume struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
}

// ScreenResult is one completed screening run.
type ScreenResult struct {
	RunID       string                `json:"run_id"`
	JobSkills   []string              `json:"job_skills"`
	Candidates  screening.ScoredBatch `json:"candidates"`
	Shortlisted map[string]bool       `json:"shortlisted"`
	Processed   int                   `json:"processed"`
	Skipped     int                   `json:"skipped"`
}

// Engine screens batches of resumes against a job description. Per-resume
// work is independent and fans out across a bounded number of workers.
type Engine struct {
	embedder    engine.Embedder
	extractor   Extractor
	questions   QuestionGenerator
	scorer      *screening.Scorer
	parallelism int
	logger      *zap.Logger
}

func NewEngine(embedder engine.Embedder, extractor Extractor, questions QuestionGenerator, scorer *screening.Scorer, parallelism int, logger *zap.Logger) (*Engine, error) {
	if parallelism <= 0 {
		return nil, fmt.Errorf("%w: screening parallelism must be positive, got %d", engine.ErrInvalidConfig, parallelism)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		embedder:    embedder,
		extractor:   extractor,
		questions:   questions,
		scorer:      scorer,
		parallelism: parallelism,
		logger:      logger,
	}, nil
}

// Screen scores every resume against the job description and returns the
// ranked, thresholded batch. A failure on one resume skips that resume only;
// the run aborts before any per-resume work if the JD itself cannot be
// processed, and surfaces a retryable error if the collaborators were
// unreachable for the entire batch.
func (e *Engine) Screen(ctx context.Context, resumes []Resume, jobDescription string, threshold float64) (*ScreenResult, error) {
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("%w: shortlist threshold must be in [0,100], got %.2f", engine.ErrInvalidConfig, threshold)
	}

	jobSkills, err := e.extractor.ExtractJobSkills(ctx, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("extract job skills: %w", err)
	}
	if len(jobSkills) == 0 {
		e.logger.Warn("no required skills found in job description; skill credit defaults to full")
	}
	job := screening.JobRequirement{
		FullText: jobDescription,
		Skills:   screening.NewSkillSet(jobSkills),
	}

	jobVector, err := e.embedder.Embed(ctx, truncateForEmbedding(jobDescription))
	if err != nil {
		return nil, fmt.Errorf("embed job description: %w", err)
	}

	e.logger.Info("screening started",
		zap.Int("resumes", len(resumes)), zap.Int("required_skills", len(job.Skills)), zap.Float64("threshold", threshold))

	// Fan out per resume, bounded by parallelism. Slots are indexed so the
	// caller's order survives for deterministic tie-breaking.
	type slot struct {
		profile screening.CandidateProfile
		err     error
	}
	slots := make([]slot, len(resumes))
	sem := make(chan struct{}, e.parallelism)
	var wg sync.WaitGroup

	for i, r := range resumes {
		wg.Add(1)
		go func(i int, r Resume) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			profile, err := e.screenOne(ctx, r, job, jobVector)
			slots[i] = slot{profile: profile, err: err}
		}(i, r)
	}
	wg.Wait()

	scored := make([]screening.CandidateProfile, 0, len(resumes))
	skipped := 0
	var collaboratorErr error
	for i, s := range slots {
		if s.err != nil {
			skipped++
			if errors.Is(s.err, engine.ErrCollaboratorUnavailable) {
				collaboratorErr = s.err
			}
			e.logger.Warn("resume skipped",
				zap.String("resume_id", resumes[i].ID), zap.Error(s.err))
			continue
		}
		scored = append(scored, s.profile)
	}

	// Every resume failing on an unreachable collaborator is a batch-level
	// outage, not a per-item condition.
	if len(scored) == 0 && collaboratorErr != nil {
		return nil, collaboratorErr
	}

	batch, shortlisted := screening.Rank(scored, threshold)

	e.logger.Info("screening complete",
		zap.Int("processed", len(scored)), zap.Int("skipped", skipped), zap.Int("shortlisted", len(shortlisted)))

	return &ScreenResult{
		RunID:       uuid.New().String(),
		JobSkills:   job.Skills.Sorted(),
		Candidates:  batch,
		Shortlisted: shortlisted,
		Processed:   len(scored),
		Skipped:     skipped,
	}, nil
}

func (e *Engine) screenOne(ctx context.Context, r Resume, job screening.JobRequirement, jobVector []float64) (screening.CandidateProfile, error) {
	extraction, err := e.extractor.ExtractResumeProfile(ctx, r.Text)
	if err != nil {
		return screening.CandidateProfile{}, fmt.Errorf("extract profile: %w", err)
	}

	resumeVector, err := e.embedder.Embed(ctx, truncateForEmbedding(r.Text))
	if err != nil {
		return screening.CandidateProfile{}, fmt.Errorf("embed resume: %w", err)
	}

	similarity := engine.Cosine(resumeVector, jobVector)

	name := extraction.Name
	if name == "" {
		name = r.Name
	}
	profile := screening.CandidateProfile{
		CandidateID:     r.ID,
		Name:            name,
		Email:           extraction.Email,
		Phone:           extraction.Phone,
		ExperienceYears: extraction.ExperienceYears,
		FullText:        r.Text,
		Skills:          screening.NewSkillSet(extraction.Skills),
	}
	return e.scorer.Score(profile, job, similarity), nil
}

// InterviewQuestions generates questions tailored to a screened candidate.
func (e *Engine) InterviewQuestions(ctx context.Context, jobDescription string, candidate screening.CandidateProfile, n int) ([]llm.InterviewQuestion, error) {
	return e.questions.InterviewQuestions(ctx, jobDescription, candidate.MatchedSkills, candidate.ExperienceYears, n)
}

func truncateForEmbedding(s string) string {
	runes := []rune(s)
	if len(runes) <= maxEmbedChars {
		return s
	}
	return string(runes[:maxEmbedChars])
}

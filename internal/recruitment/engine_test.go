package recruitment

import (
	"context"
	"fmt"
	"testing"

	"hr-engine/internal/engine"
	"hr-engine/internal/llm"
	"hr-engine/internal/screening"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	vec, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("%w: no stub vector for %q", engine.ErrEmbedding, text)
	}
	return vec, nil
}

type stubExtractor struct {
	jobSkills   []string
	jobErr      error
	profiles    map[string]*llm.ResumeExtraction
	profileErrs map[string]error
}

func (s *stubExtractor) ExtractResumeProfile(ctx context.Context, resumeText string) (*llm.ResumeExtraction, error) {
	if err, ok := s.profileErrs[resumeText]; ok {
		return nil, err
	}
	if p, ok := s.profiles[resumeText]; ok {
		return p, nil
	}
	return &llm.ResumeExtraction{}, nil
}

func (s *stubExtractor) ExtractJobSkills(ctx context.Context, jobDescription string) ([]string, error) {
	return s.jobSkills, s.jobErr
}

type stubQuestions struct {
	questions []llm.InterviewQuestion
	gotSkills []string
}

func (s *stubQuestions) InterviewQuestions(ctx context.Context, jobDescription string, matchedSkills []string, experienceYears, n int) ([]llm.InterviewQuestion, error) {
	s.gotSkills = matchedSkills
	return s.questions, nil
}

func newTestEngine(t *testing.T, embedder engine.Embedder, extractor Extractor) *Engine {
	t.Helper()
	scorer, err := screening.NewScorer(0.6, 0.4)
	require.NoError(t, err)
	e, err := NewEngine(embedder, extractor, &stubQuestions{}, scorer, 4, nil)
	require.NoError(t, err)
	return e
}

func TestNewEngineRejectsBadParallelism(t *testing.T) {
	scorer, err := screening.NewScorer(0.6, 0.4)
	require.NoError(t, err)
	_, err = NewEngine(&stubEmbedder{}, &stubExtractor{}, &stubQuestions{}, scorer, 0, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

func TestScreenRanksCandidates(t *testing.T) {
	jd := "ML engineer role needing Python, ML and AWS"
	embedder := &stubEmbedder{vectors: map[string][]float64{
		jd:             {1, 0, 0},
		"resume alpha": {1, 0, 0}, // perfect semantic fit
		"resume beta":  {0, 1, 0}, // orthogonal
	}}
	extractor := &stubExtractor{
		jobSkills: []string{"Python", "ML", "AWS"},
		profiles: map[string]*llm.ResumeExtraction{
			"resume alpha": {Name: "Alpha", ExperienceYears: 5, Skills: []string{"Python", "ML"}},
			"resume beta":  {Name: "Beta", ExperienceYears: 2, Skills: []string{"Java"}},
		},
	}

	e := newTestEngine(t, embedder, extractor)
	result, err := e.Screen(context.Background(), []Resume{
		{ID: "alpha.pdf", Text: "resume alpha"},
		{ID: "beta.pdf", Text: "resume beta"},
	}, jd, 50)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []string{"aws", "ml", "python"}, result.JobSkills)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, result.Candidates, 2)
	top := result.Candidates[0]
	assert.Equal(t, "alpha.pdf", top.CandidateID)
	assert.Equal(t, "Alpha", top.Name)
	assert.InDelta(t, 100.0, top.SimilarityScore, 1e-9)
	assert.InDelta(t, 66.67, top.SkillMatchRate, 1e-9)
	// 100*0.6 + 66.667*0.4
	assert.InDelta(t, 86.67, top.FinalScore, 1e-9)
	assert.True(t, top.Shortlisted)

	bottom := result.Candidates[1]
	assert.Equal(t, "beta.pdf", bottom.CandidateID)
	assert.InDelta(t, 0.0, bottom.FinalScore, 1e-9)
	assert.False(t, bottom.Shortlisted)

	assert.Equal(t, map[string]bool{"alpha.pdf": true}, result.Shortlisted)
}

func TestScreenInvalidThreshold(t *testing.T) {
	e := newTestEngine(t, &stubEmbedder{}, &stubExtractor{})
	_, err := e.Screen(context.Background(), nil, "jd", 101)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
	_, err = e.Screen(context.Background(), nil, "jd", -1)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

func TestScreenAbortsWhenJobExtractionFails(t *testing.T) {
	extractor := &stubExtractor{jobErr: fmt.Errorf("%w: llm down", engine.ErrCollaboratorUnavailable)}
	e := newTestEngine(t, &stubEmbedder{}, extractor)
	_, err := e.Screen(context.Background(), []Resume{{ID: "a", Text: "a"}}, "jd", 50)
	assert.ErrorIs(t, err, engine.ErrCollaboratorUnavailable)
}

func TestScreenSkipsFailingResumes(t *testing.T) {
	jd := "backend role"
	embedder := &stubEmbedder{vectors: map[string][]float64{
		jd:            {1, 0, 0},
		"resume good": {1, 0, 0},
	}}
	extractor := &stubExtractor{
		jobSkills: []string{"Go"},
		profiles: map[string]*llm.ResumeExtraction{
			"resume good": {Name: "Good", Skills: []string{"Go"}},
		},
		profileErrs: map[string]error{
			"resume broken": fmt.Errorf("parse resume extraction: bad json"),
		},
	}

	e := newTestEngine(t, embedder, extractor)
	result, err := e.Screen(context.Background(), []Resume{
		{ID: "broken.pdf", Text: "resume broken"},
		{ID: "good.pdf", Text: "resume good"},
	}, jd, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "good.pdf", result.Candidates[0].CandidateID)
}

func TestScreenAllCollaboratorFailuresSurface(t *testing.T) {
	jd := "role"
	embedder := &stubEmbedder{vectors: map[string][]float64{jd: {1, 0, 0}}}
	extractor := &stubExtractor{
		jobSkills: []string{"Go"},
		profileErrs: map[string]error{
			"resume a": fmt.Errorf("%w: timeout", engine.ErrCollaboratorUnavailable),
			"resume b": fmt.Errorf("%w: timeout", engine.ErrCollaboratorUnavailable),
		},
	}

	e := newTestEngine(t, embedder, extractor)
	_, err := e.Screen(context.Background(), []Resume{
		{ID: "a", Text: "resume a"},
		{ID: "b", Text: "resume b"},
	}, jd, 50)
	assert.ErrorIs(t, err, engine.ErrCollaboratorUnavailable)
}

func TestScreenNameFallsBackToResume(t *testing.T) {
	jd := "role"
	embedder := &stubEmbedder{vectors: map[string][]float64{
		jd:       {1, 0, 0},
		"resume": {1, 0, 0},
	}}
	extractor := &stubExtractor{
		jobSkills: []string{"Go"},
		profiles: map[string]*llm.ResumeExtraction{
			"resume": {Skills: []string{"Go"}}, // no name extracted
		},
	}

	e := newTestEngine(t, embedder, extractor)
	result, err := e.Screen(context.Background(), []Resume{
		{ID: "cv.pdf", Name: "cv.pdf", Text: "resume"},
	}, jd, 0)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "cv.pdf", result.Candidates[0].Name)
}

func TestScreenZeroRequiredSkillsGrantsFullCredit(t *testing.T) {
	jd := "vague role with no listed skills"
	embedder := &stubEmbedder{vectors: map[string][]float64{
		jd:       {1, 0, 0},
		"resume": {1, 0, 0},
	}}
	extractor := &stubExtractor{jobSkills: nil, profiles: map[string]*llm.ResumeExtraction{
		"resume": {Name: "Solo"},
	}}

	e := newTestEngine(t, embedder, extractor)
	result, err := e.Screen(context.Background(), []Resume{{ID: "cv", Text: "resume"}}, jd, 50)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.InDelta(t, 100.0, result.Candidates[0].SkillMatchRate, 1e-9)
	assert.InDelta(t, 100.0, result.Candidates[0].FinalScore, 1e-9)
}

func TestInterviewQuestionsPassesMatchedSkills(t *testing.T) {
	questions := &stubQuestions{questions: []llm.InterviewQuestion{
		{Question: "Explain goroutine scheduling", Keywords: []string{"scheduler", "GOMAXPROCS"}},
	}}
	scorer, err := screening.NewScorer(0.6, 0.4)
	require.NoError(t, err)
	e, err := NewEngine(&stubEmbedder{}, &stubExtractor{}, questions, scorer, 1, nil)
	require.NoError(t, err)

	candidate := screening.CandidateProfile{MatchedSkills: []string{"go", "sql"}, ExperienceYears: 4}
	got, err := e.InterviewQuestions(context.Background(), "jd", candidate, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"go", "sql"}, questions.gotSkills)
}

package chatbot

import (
	"context"
	"fmt"
	"testing"

	"hr-engine/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vectors map[string][]float64
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vec, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("%w: no stub vector for %q", engine.ErrEmbedding, text)
	}
	return vec, nil
}

type stubGenerator struct {
	answer string
	err    error
	calls  int
	gotCtx []string
}

func (g *stubGenerator) Answer(ctx context.Context, question string, contextSnippets []string) (string, error) {
	g.calls++
	g.gotCtx = contextSnippets
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func testConfig() Config {
	return Config{ChunkSize: 500, ChunkOverlap: 50, TopK: 5, MinSimilarity: 0.5, Dimension: 3}
}

func TestAskGroundedAnswer(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"employees get 25 vacation days per year": {1, 0, 0},
		"how many vacation days do I get?":        {0.95, 0.05, 0},
	}}
	gen := &stubGenerator{answer: "You get 25 vacation days."}

	svc, err := NewService(embedder, gen, testConfig(), nil)
	require.NoError(t, err)

	stored, err := svc.AddDocument(context.Background(), "handbook.pdf", "employees get 25 vacation days per year")
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.Equal(t, 1, svc.IndexSize())

	answer, err := svc.Ask(context.Background(), "how many vacation days do I get?")
	require.NoError(t, err)
	assert.True(t, answer.Grounded)
	assert.Equal(t, "You get 25 vacation days.", answer.Answer)
	assert.Equal(t, []string{"handbook.pdf"}, answer.Sources)

	require.Equal(t, 1, gen.calls)
	require.Len(t, gen.gotCtx, 1)
	assert.Contains(t, gen.gotCtx[0], "[From handbook.pdf]")
	assert.Contains(t, gen.gotCtx[0], "25 vacation days")
}

func TestAskWithoutContextNeverCallsGenerator(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"employees get 25 vacation days per year": {1, 0, 0},
		"what is the meaning of life?":            {0, 0, 1},
	}}
	gen := &stubGenerator{answer: "should never be used"}

	svc, err := NewService(embedder, gen, testConfig(), nil)
	require.NoError(t, err)
	_, err = svc.AddDocument(context.Background(), "handbook.pdf", "employees get 25 vacation days per year")
	require.NoError(t, err)

	answer, err := svc.Ask(context.Background(), "what is the meaning of life?")
	require.NoError(t, err)
	assert.False(t, answer.Grounded)
	assert.Equal(t, NoRelevantPolicyAnswer, answer.Answer)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, 0, gen.calls, "generator must not run without retrieved context")
}

func TestAskEmptyIndexUsesCannedAnswer(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"any question": {1, 0, 0},
	}}
	gen := &stubGenerator{}

	svc, err := NewService(embedder, gen, testConfig(), nil)
	require.NoError(t, err)

	answer, err := svc.Ask(context.Background(), "any question")
	require.NoError(t, err)
	assert.False(t, answer.Grounded)
	assert.Equal(t, NoRelevantPolicyAnswer, answer.Answer)
	assert.Equal(t, 0, gen.calls)
}

func TestAskPropagatesGeneratorFailure(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"policy text": {1, 0, 0},
		"question":    {1, 0, 0},
	}}
	gen := &stubGenerator{err: fmt.Errorf("%w: llm down", engine.ErrCollaboratorUnavailable)}

	svc, err := NewService(embedder, gen, testConfig(), nil)
	require.NoError(t, err)
	_, err = svc.AddDocument(context.Background(), "doc", "policy text")
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), "question")
	assert.ErrorIs(t, err, engine.ErrCollaboratorUnavailable)
}

func TestAskDeduplicatesSources(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"vacation days are generous here": {1, 0, 0},
		"vacation carries over each year": {0.9, 0.1, 0},
		"vacation?":                       {1, 0, 0},
	}}
	gen := &stubGenerator{answer: "ok"}

	svc, err := NewService(embedder, gen, testConfig(), nil)
	require.NoError(t, err)
	_, err = svc.AddDocument(context.Background(), "handbook.pdf", "vacation days are generous here")
	require.NoError(t, err)
	_, err = svc.AddDocument(context.Background(), "handbook.pdf", "vacation carries over each year")
	require.NoError(t, err)

	answer, err := svc.Ask(context.Background(), "vacation?")
	require.NoError(t, err)
	assert.Equal(t, []string{"handbook.pdf"}, answer.Sources)
	assert.Len(t, gen.gotCtx, 2)
}

func TestAddDocumentInvalidChunkParams(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkOverlap = cfg.ChunkSize // invalid

	svc, err := NewService(&stubEmbedder{}, &stubGenerator{}, cfg, nil)
	require.NoError(t, err)

	_, err = svc.AddDocument(context.Background(), "doc", "some text")
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

package chatbot

import (
	"context"
	"fmt"

	"hr-engine/internal/engine"

	"go.uber.org/zap"
)

// Generator is the answer-generation collaborator. It only ever receives
// engine-selected context; with no context it is not called at all, so it can
// never invent an ungrounded answer.
type Generator interface {
	Answer(ctx context.Context, question string, contextSnippets []string) (string, error)
}

// NoRelevantPolicyAnswer is returned verbatim when retrieval finds nothing
// above the similarity cutoff. Distinct from any failure message.
const NoRelevantPolicyAnswer = "No relevant policy found for this question. Try rephrasing it, or check that the relevant policy document has been uploaded."

// Corpus stores embedded units and answers similarity searches. The in-memory
// index and the pgvector-backed index both satisfy it.
type Corpus interface {
	Insert(ctx context.Context, units []engine.TextUnit) (int, error)
	Search(ctx context.Context, queryVector []float64, k int, minSimilarity float64) ([]engine.RetrievalResult, error)
}

// Config holds the corpus parameters. Validated by config at startup.
type Config struct {
	ChunkSize     int
	ChunkOverlap  int
	TopK          int
	MinSimilarity float64
	Dimension     int
}

// Service answers policy questions over an indexed document corpus:
// chunk -> embed -> index at load time, embed -> search -> generate at ask time.
type Service struct {
	corpus    Corpus
	memory    *engine.Index // set only when the corpus is the in-memory index
	retriever *engine.Retriever
	generator Generator
	cfg       Config
	logger    *zap.Logger
}

// NewService builds a chatbot over the in-memory index. The corpus lives in
// process memory and persists through JSON snapshots.
func NewService(embedder engine.Embedder, generator Generator, cfg Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	index, err := engine.NewIndex(embedder, cfg.Dimension, logger)
	if err != nil {
		return nil, err
	}
	s, err := NewServiceWithCorpus(embedder, generator, index, cfg, logger)
	if err != nil {
		return nil, err
	}
	s.memory = index
	return s, nil
}

// NewServiceWithCorpus builds a chatbot over any corpus backend, typically the
// pgvector index when durability matters.
func NewServiceWithCorpus(embedder engine.Embedder, generator Generator, corpus Corpus, cfg Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		corpus:    corpus,
		retriever: engine.NewRetriever(embedder, corpus, cfg.MinSimilarity, logger),
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Answer is the chatbot's reply to one question. Grounded is false when no
// policy context cleared the cutoff and the canned no-context answer was used.
type Answer struct {
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Grounded bool     `json:"grounded"`
}

// AddDocument chunks the extracted text of one policy document and indexes it.
// Returns the number of units stored.
func (s *Service) AddDocument(ctx context.Context, sourceID, text string) (int, error) {
	units, err := engine.Chunk(text, sourceID, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if err != nil {
		return 0, err
	}
	stored, err := s.corpus.Insert(ctx, units)
	if err != nil {
		return 0, fmt.Errorf("index document %s: %w", sourceID, err)
	}
	s.logger.Info("policy document indexed",
		zap.String("source_id", sourceID), zap.Int("chunks", len(units)), zap.Int("stored", stored))
	return stored, nil
}

// Ask retrieves the most relevant policy chunks and lets the generator answer
// from them. An empty retrieval short-circuits: the generator is never called
// without context.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	results, err := s.retriever.Retrieve(ctx, question, s.cfg.TopK)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		s.logger.Info("no relevant policy context for question")
		return &Answer{Answer: NoRelevantPolicyAnswer, Sources: []string{}, Grounded: false}, nil
	}

	snippets := make([]string, len(results))
	var sources []string
	seen := make(map[string]bool)
	for i, r := range results {
		snippets[i] = fmt.Sprintf("[From %s]\n%s", r.Unit.SourceID, r.Unit.Text)
		if !seen[r.Unit.SourceID] {
			seen[r.Unit.SourceID] = true
			sources = append(sources, r.Unit.SourceID)
		}
	}

	answer, err := s.generator.Answer(ctx, question, snippets)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Info("answer generated", zap.Strings("sources", sources))
	return &Answer{Answer: answer, Sources: sources, Grounded: true}, nil
}

// IndexSize reports how many units the corpus currently holds.
func (s *Service) IndexSize() int {
	if s.memory != nil {
		return s.memory.Size()
	}
	if sized, ok := s.corpus.(interface {
		Size(ctx context.Context) (int, error)
	}); ok {
		if n, err := sized.Size(context.Background()); err == nil {
			return n
		}
	}
	return 0
}

// SaveIndex writes the corpus to a snapshot file. Durable backends persist on
// insert, so this is a no-op for them.
func (s *Service) SaveIndex(path string) error {
	if s.memory == nil {
		return nil
	}
	return s.memory.SaveSnapshot(path)
}

// LoadIndex restores the corpus from a snapshot file.
func (s *Service) LoadIndex(path string) error {
	if s.memory == nil {
		return nil
	}
	return s.memory.LoadSnapshot(path)
}

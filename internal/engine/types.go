package engine

import "context"

// TextUnit is the atomic retrievable span of a source document. Units are
// immutable once created; Position is 0-based and strictly increasing within
// one SourceID.
type TextUnit struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	SourceID string `json:"source_id"`
	Position int    `json:"position"`
}

// VectorEntry pairs an embedded unit with its vector. All vectors in one index
// share the same dimensionality.
type VectorEntry struct {
	UnitID   string    `json:"unit_id"`
	SourceID string    `json:"source_id"`
	Position int       `json:"position"`
	Text     string    `json:"text"`
	Vector   []float64 `json:"vector"`
}

// RetrievalResult is one search hit. Rank is 1-based within the result set.
type RetrievalResult struct {
	Unit  TextUnit `json:"unit"`
	Score float64  `json:"score"`
	Rank  int      `json:"rank"`
}

// Embedder maps text to a fixed-dimension vector. Implementations talk to an
// external model; the engine never assumes a particular provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Searcher is the read side of a vector index. Both the in-memory Index and
// the Postgres-backed index satisfy it, so the Retriever can run against
// either.
type Searcher interface {
	Search(ctx context.Context, queryVector []float64, k int, minSimilarity float64) ([]RetrievalResult, error)
}

package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Retriever answers a text query with the top-k most similar indexed units.
// The minimum-similarity cutoff keeps unrelated queries from producing
// spurious low-relevance context: an empty result tells the caller explicitly
// that there is nothing to ground an answer on.
type Retriever struct {
	embedder      Embedder
	index         Searcher
	minSimilarity float64
	logger        *zap.Logger
}

func NewRetriever(embedder Embedder, index Searcher, minSimilarity float64, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		embedder:      embedder,
		index:         index,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Retrieve embeds the query and searches the index. An empty slice means no
// indexed unit cleared the similarity cutoff; it is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]RetrievalResult, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.index.Search(ctx, vec, k, r.minSimilarity)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("retrieval complete",
		zap.Int("k", k),
		zap.Float64("min_similarity", r.minSimilarity),
		zap.Int("results", len(results)))
	return results, nil
}

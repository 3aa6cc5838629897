package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Index is an in-memory vector index with single-writer/multiple-reader
// discipline: Insert appends the whole batch under the write lock, so
// concurrent searches never observe a partially built index.
type Index struct {
	mu       sync.RWMutex
	dim      int
	embedder Embedder
	entries  []VectorEntry
	logger   *zap.Logger
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(embedder Embedder, dimension int, logger *zap.Logger) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: vector dimension must be positive, got %d", ErrInvalidConfig, dimension)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{dim: dimension, embedder: embedder, logger: logger}, nil
}

// Insert embeds each unit and stores the resulting entries in input order.
// Units that cannot be embedded are skipped and logged; the batch aborts only
// when the embedding collaborator is unreachable. Returns the number of units
// stored.
func (ix *Index) Insert(ctx context.Context, units []TextUnit) (int, error) {
	batch := make([]VectorEntry, 0, len(units))
	for _, u := range units {
		if u.Text == "" {
			ix.logger.Warn("skipping unit with empty text",
				zap.String("unit_id", u.ID), zap.String("source_id", u.SourceID))
			continue
		}
		vec, err := ix.embedder.Embed(ctx, u.Text)
		if err != nil {
			if errors.Is(err, ErrCollaboratorUnavailable) {
				return 0, fmt.Errorf("embed unit %s: %w", u.ID, err)
			}
			ix.logger.Warn("unit could not be embedded, skipping",
				zap.String("unit_id", u.ID), zap.String("source_id", u.SourceID), zap.Error(err))
			continue
		}
		if len(vec) != ix.dim {
			ix.logger.Warn("vector dimension mismatch, skipping unit",
				zap.String("unit_id", u.ID), zap.Int("got", len(vec)), zap.Int("want", ix.dim))
			continue
		}
		batch = append(batch, VectorEntry{
			UnitID:   u.ID,
			SourceID: u.SourceID,
			Position: u.Position,
			Text:     u.Text,
			Vector:   vec,
		})
	}

	ix.mu.Lock()
	ix.entries = append(ix.entries, batch...)
	ix.mu.Unlock()

	ix.logger.Debug("index insert complete",
		zap.Int("requested", len(units)), zap.Int("stored", len(batch)))
	return len(batch), nil
}

// Search returns at most k entries whose cosine similarity to queryVector is
// at least minSimilarity, best first. Equal scores keep insertion order, so
// output is deterministic. An empty result is a valid outcome, not an error.
func (ix *Index) Search(ctx context.Context, queryVector []float64, k int, minSimilarity float64) ([]RetrievalResult, error) {
	_ = ctx // search is pure in-memory computation
	if len(queryVector) != ix.dim {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			ErrEmbedding, len(queryVector), ix.dim)
	}
	if k <= 0 {
		return []RetrievalResult{}, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	type match struct {
		entry VectorEntry
		score float64
	}
	matches := make([]match, 0, len(ix.entries))
	for _, e := range ix.entries {
		score := Cosine(queryVector, e.Vector)
		if score >= minSimilarity {
			matches = append(matches, match{entry: e, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > k {
		matches = matches[:k]
	}

	results := make([]RetrievalResult, len(matches))
	for i, m := range matches {
		results[i] = RetrievalResult{
			Unit: TextUnit{
				ID:       m.entry.UnitID,
				Text:     m.entry.Text,
				SourceID: m.entry.SourceID,
				Position: m.entry.Position,
			},
			Score: m.score,
			Rank:  i + 1,
		}
	}
	return results, nil
}

// Size returns the number of stored entries.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Dimension returns the fixed vector dimension of the index.
func (ix *Index) Dimension() int {
	return ix.dim
}

type indexSnapshot struct {
	Dimension int           `json:"dimension"`
	Entries   []VectorEntry `json:"entries"`
}

// SaveSnapshot serializes all entries, in insertion order, to path. Reloading
// the snapshot reproduces identical search results for the same queries.
func (ix *Index) SaveSnapshot(path string) error {
	ix.mu.RLock()
	snap := indexSnapshot{Dimension: ix.dim, Entries: ix.entries}
	data, err := json.Marshal(snap)
	ix.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal index snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot replaces the index contents with a previously saved snapshot.
// A snapshot built for a different dimension requires a full rebuild.
func (ix *Index) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read index snapshot: %w", err)
	}
	var snap indexSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse index snapshot: %w", err)
	}
	if snap.Dimension != ix.dim {
		return fmt.Errorf("%w: snapshot dimension %d does not match index dimension %d (rebuild required)",
			ErrInvalidConfig, snap.Dimension, ix.dim)
	}

	ix.mu.Lock()
	ix.entries = snap.Entries
	ix.mu.Unlock()

	ix.logger.Info("index snapshot loaded", zap.String("path", path), zap.Int("entries", len(snap.Entries)))
	return nil
}

// Cosine returns the cosine similarity between two vectors, 0 when either is
// a zero vector or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hr-engine/internal/engine"

	"go.uber.org/zap"
)

// PgVectorIndex is the durable alternative to the in-memory index: chunk
// vectors live in a pgvector column and search runs in SQL. It satisfies
// engine.Searcher and the chatbot's corpus contract, so callers cannot tell
// the two backends apart.
type PgVectorIndex struct {
	db        *sql.DB
	embedder  engine.Embedder
	dimension int
	logger    *zap.Logger
}

func NewPgVectorIndex(db *sql.DB, embedder engine.Embedder, dimension int, logger *zap.Logger) (*PgVectorIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: index dimension must be positive, got %d", engine.ErrInvalidConfig, dimension)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PgVectorIndex{db: db, embedder: embedder, dimension: dimension, logger: logger}, nil
}

// Insert embeds and upserts a batch of units. Units that cannot be embedded
// are skipped; an unreachable embedder aborts the whole batch. Returns the
// number of units stored.
func (p *PgVectorIndex) Insert(ctx context.Context, units []engine.TextUnit) (int, error) {
	stored := 0
	for _, unit := range units {
		if strings.TrimSpace(unit.Text) == "" {
			p.logger.Warn("skipping empty unit", zap.String("unit_id", unit.ID))
			continue
		}
		vec, err := p.embedder.Embed(ctx, unit.Text)
		if err != nil {
			if errors.Is(err, engine.ErrCollaboratorUnavailable) {
				return stored, fmt.Errorf("embed unit %s: %w", unit.ID, err)
			}
			p.logger.Warn("skipping unit that failed to embed",
				zap.String("unit_id", unit.ID), zap.Error(err))
			continue
		}
		if err := p.insertEntry(ctx, engine.VectorEntry{
			UnitID:   unit.ID,
			SourceID: unit.SourceID,
			Position: unit.Position,
			Text:     unit.Text,
			Vector:   vec,
		}); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

// insertEntry upserts one embedded unit. Re-indexing a document overwrites its
// previous chunks instead of duplicating them.
func (p *PgVectorIndex) insertEntry(ctx context.Context, entry engine.VectorEntry) error {
	if len(entry.Vector) != p.dimension {
		return fmt.Errorf("%w: vector has %d dimensions, index expects %d",
			engine.ErrEmbedding, len(entry.Vector), p.dimension)
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO policy_chunks (unit_id, source_id, position, content, embedding)
		VALUES ($1, $2, $3, $4, $5::vector)
		ON CONFLICT (unit_id) DO UPDATE SET
			source_id = EXCLUDED.source_id,
			position = EXCLUDED.position,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`,
		entry.UnitID, entry.SourceID, entry.Position, entry.Text, vectorLiteral(entry.Vector))
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// Search returns the k nearest stored units at or above minSimilarity,
// best first. Ties break on position so results stay deterministic.
func (p *PgVectorIndex) Search(ctx context.Context, queryVector []float64, k int, minSimilarity float64) ([]engine.RetrievalResult, error) {
	if len(queryVector) != p.dimension {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			engine.ErrEmbedding, len(queryVector), p.dimension)
	}
	if k <= 0 {
		return []engine.RetrievalResult{}, nil
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT unit_id, source_id, position, content,
		       1 - (embedding <=> $1::vector) AS similarity
		FROM policy_chunks
		WHERE 1 - (embedding <=> $1::vector) >= $2
		ORDER BY similarity DESC, position ASC
		LIMIT $3`,
		vectorLiteral(queryVector), minSimilarity, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	results := []engine.RetrievalResult{}
	for rows.Next() {
		var r engine.RetrievalResult
		if err := rows.Scan(&r.Unit.ID, &r.Unit.SourceID, &r.Unit.Position, &r.Unit.Text, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		r.Rank = len(results) + 1
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}
	return results, nil
}

// Size reports how many units the table currently holds.
func (p *PgVectorIndex) Size(ctx context.Context) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM policy_chunks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// vectorLiteral renders a vector in pgvector's text format: [0.1,0.2,...].
func vectorLiteral(vec []float64) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// unitIDNamespace is a dedicated namespace for deterministic unit IDs, so the
// same chunk of the same document always maps to the same ID across rebuilds.
// UUID generated via `uuidgen`.
var unitIDNamespace = uuid.MustParse("9c1f4b8a-2e47-4d0b-b1d3-6a5c0e92f7d4")

// UnitID returns the content-addressed ID for the chunk of sourceID at position.
func UnitID(sourceID string, position int) string {
	return uuid.NewSHA1(unitIDNamespace, []byte(fmt.Sprintf("%s:%d", sourceID, position))).String()
}

// Chunk splits text into overlapping word windows of targetSize words, each
// sharing overlap words with its predecessor, so sentences near a window
// boundary appear whole in at least one unit. Splitting happens on word
// boundaries only and is fully deterministic.
//
// Text shorter than targetSize yields a single unit with the whole text.
func Chunk(text, sourceID string, targetSize, overlap int) ([]TextUnit, error) {
	if targetSize <= 0 || overlap < 0 || overlap >= targetSize {
		return nil, fmt.Errorf("%w: chunk parameters target_size=%d overlap=%d (need target_size > 0 and 0 <= overlap < target_size)",
			ErrInvalidConfig, targetSize, overlap)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	if len(words) <= targetSize {
		return []TextUnit{{
			ID:       UnitID(sourceID, 0),
			Text:     strings.TrimSpace(text),
			SourceID: sourceID,
			Position: 0,
		}}, nil
	}

	step := targetSize - overlap
	var units []TextUnit
	for start := 0; start < len(words); start += step {
		end := start + targetSize
		if end > len(words) {
			end = len(words)
		}
		units = append(units, TextUnit{
			ID:       UnitID(sourceID, len(units)),
			Text:     strings.Join(words[start:end], " "),
			SourceID: sourceID,
			Position: len(units),
		})
		if end == len(words) {
			break
		}
	}
	return units, nil
}

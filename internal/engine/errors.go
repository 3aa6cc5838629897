package engine

import "errors"

var (
	// ErrInvalidConfig marks setup-time parameter violations (score weights,
	// chunk sizes, vector dimensions). Fatal before any work starts.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbedding marks a single text unit that could not be embedded.
	// Batches skip the unit and continue.
	ErrEmbedding = errors.New("embedding failed")

	// ErrCollaboratorUnavailable marks a failed or timed-out call to an
	// external embed/generate service. Callers may retry; the engine does not.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

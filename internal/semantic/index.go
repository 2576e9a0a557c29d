package semantic

import "context"

// Neighbor is one vector index query hit
type Neighbor struct {
	Identity string
	Score    float64
}

// VectorIndex stores embeddings by API identity and answers
// nearest-neighbor queries over them. Failures wrap
// models.ErrIndexUnavailable; the engine degrades to structural-only
// mode when they occur mid-run.
type VectorIndex interface {
	// Upsert stores or replaces the embedding for an API identity.
	// Idempotent: repeating a call overwrites, never duplicates.
	Upsert(ctx context.Context, identity string, vector []float32) error

	// QueryNearest returns up to topK identities whose stored vectors
	// have cosine similarity >= minScore against the query vector,
	// ordered descending by similarity, ties by identity ascending.
	QueryNearest(ctx context.Context, vector []float32, topK int, minScore float64) ([]Neighbor, error)

	// Vector returns the stored embedding for an identity, reporting
	// whether one exists
	Vector(ctx context.Context, identity string) ([]float32, bool, error)
}

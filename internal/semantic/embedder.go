// Package semantic holds the capability interfaces for the optional
// semantic collaborators (embedding provider and vector index) plus the
// bundled implementations. Absence of a collaborator is a valid
// configuration, not an error: the engine checks for nil before use and
// runs structural-only without them.
package semantic

import "context"

// Embedder converts text into a fixed-length embedding vector. Failures
// to reach the underlying service wrap models.ErrEmbeddingUnavailable so
// callers can distinguish them from semantic mode being disabled.
type Embedder interface {
	// Embed returns the embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector length produced by this embedder,
	// or 0 when it is not yet known
	Dimensions() int

	// Model returns the model identifier used by this embedder
	Model() string
}

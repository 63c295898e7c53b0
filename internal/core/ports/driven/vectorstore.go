package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorStore persists embedded passages and serves nearest-neighbour
// search over them.
//
// Vectors must be L2-normalised before insertion; Search scores by inner
// product, so the combination realises cosine similarity. The store never
// normalises on its own - the caller owns that invariant for both sides.
//
// Rebuild and AddBatch are single-writer operations: concurrent mutation
// of the same persisted path is not safe and must be serialised by the
// caller. Reads (Search, Count, Dimensions) against a store that is not
// being rebuilt are safe.
type VectorStore interface {
	// Rebuild destroys any existing persisted index at the store's path
	// and creates an empty one. Fails with domain.ErrStorage when the
	// path cannot be removed or recreated; a partial rebuild is never
	// left behind as ready.
	Rebuild(ctx context.Context) error

	// AddBatch inserts one batch of passages with their vectors in a
	// single transaction, so a later batch failure leaves this batch
	// durably committed.
	AddBatch(ctx context.Context, passages []domain.Passage, vectors [][]float32) error

	// Search returns the k nearest passages to the query vector by inner
	// product, descending. A store with fewer than k entries returns all
	// of them; an empty store returns an empty result, not an error.
	// Fails with domain.ErrNotFound when no index has been built.
	Search(ctx context.Context, vector []float32, k int) (domain.RetrievalResult, error)

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the vector dimension the index was built with,
	// or 0 when the index is empty.
	Dimensions(ctx context.Context) (int, error)

	// Exists reports whether a persisted index is present. This is the
	// readiness signal shared by all front ends.
	Exists() bool

	// Path returns the persistence path.
	Path() string

	// Close releases resources.
	Close() error
}

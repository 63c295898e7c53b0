package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Retriever embeds a query and finds the most similar passages.
// It is a thin contract over the vector store; its one responsibility
// beyond delegation is guaranteeing that query vectors are normalised
// exactly like the corpus vectors were at build time.
type Retriever struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewRetriever creates a retriever over the given embedder and store.
func NewRetriever(embedder driven.EmbeddingService, store driven.VectorStore) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
	}
}

// Retrieve returns the top-k passages most similar to the query.
// A query embedding whose dimension differs from the index dimension is
// a configuration error, reported as domain.ErrDimensionMismatch.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (domain.RetrievalResult, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidInput, k)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", domain.ErrInvalidInput)
	}

	logger.Debug("Retrieving top %d passages for %q", k, query)

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	dims, err := r.store.Dimensions(ctx)
	if err != nil {
		return nil, fmt.Errorf("index dimensions: %w", err)
	}
	if dims > 0 && dims != len(vec) {
		return nil, fmt.Errorf("%w: query %d, index %d (model %s)",
			domain.ErrDimensionMismatch, len(vec), dims, r.embedder.ModelName())
	}

	// Same normalisation as at build time; see l2Normalize.
	results, err := r.store.Search(ctx, l2Normalize(vec), k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	logger.Debug("Retrieved %d passages", len(results))
	return results, nil
}

package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// DefaultInsertBatchSize is the number of passages embedded and inserted
// per batch. Batching bounds the memory and retry cost of a failure to
// one batch instead of the whole corpus.
const DefaultInsertBatchSize = 100

// Indexer builds the vector index from the source document:
// load pages, chunk, embed in batches, insert in batches.
type Indexer struct {
	loader    driven.PageLoader
	splitter  *chunker.Splitter
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	docPath   string
	batchSize int
}

// IndexerOption configures the indexer.
type IndexerOption func(*Indexer)

// WithInsertBatchSize sets the embed/insert batch size.
func WithInsertBatchSize(n int) IndexerOption {
	return func(s *Indexer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewIndexer creates an index service for the given source document.
func NewIndexer(
	loader driven.PageLoader,
	splitter *chunker.Splitter,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	docPath string,
	opts ...IndexerOption,
) *Indexer {
	s := &Indexer{
		loader:    loader,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		docPath:   docPath,
		batchSize: DefaultInsertBatchSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Build performs a destructive rebuild: the previous index is removed in
// its entirety before the new one is created. Concurrent builds on the
// same path are not safe; callers keep single-writer discipline.
//
// Insertion happens in fixed-size batches so a failure partway through
// leaves all prior batches durably committed. The error then reports the
// failed batch and how many passages were already committed, and the
// caller decides whether to retry the tail.
func (s *Indexer) Build(ctx context.Context) (driving.BuildReport, error) {
	start := time.Now()
	logger.Section("Index Build")

	if s.embedder == nil {
		return driving.BuildReport{}, fmt.Errorf("build: %w", domain.ErrEmbeddingUnavailable)
	}

	pages, err := s.loader.Load(ctx, s.docPath)
	if err != nil {
		return driving.BuildReport{}, fmt.Errorf("load %s: %w", s.docPath, err)
	}
	logger.Info("Loaded %d pages from %s", len(pages), s.docPath)

	passages, err := s.splitter.Split(pages)
	if err != nil {
		return driving.BuildReport{}, fmt.Errorf("split pages: %w", err)
	}

	if err := s.store.Rebuild(ctx); err != nil {
		return driving.BuildReport{}, fmt.Errorf("rebuild index: %w", err)
	}

	batches := 0
	committed := 0
	for from := 0; from < len(passages); from += s.batchSize {
		to := from + s.batchSize
		if to > len(passages) {
			to = len(passages)
		}
		batch := passages[from:to]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return driving.BuildReport{}, fmt.Errorf(
				"embed batch %d (%d passages already committed): %w", batches+1, committed, err)
		}
		for i := range vectors {
			vectors[i] = l2Normalize(vectors[i])
		}

		if err := s.store.AddBatch(ctx, batch, vectors); err != nil {
			return driving.BuildReport{}, fmt.Errorf(
				"insert batch %d (%d passages already committed): %w", batches+1, committed, err)
		}

		batches++
		committed += len(batch)
		logger.Debug("Committed batch %d (%d/%d passages)", batches, committed, len(passages))
	}

	report := driving.BuildReport{
		Pages:    len(pages),
		Passages: committed,
		Batches:  batches,
		Elapsed:  time.Since(start),
	}
	logger.Info("Indexed %d passages in %s", report.Passages, report.Elapsed)
	return report, nil
}

// Status reports the persisted index state.
func (s *Indexer) Status(ctx context.Context) (driving.IndexStatus, error) {
	status := driving.IndexStatus{
		Exists: s.store.Exists(),
		Path:   s.store.Path(),
	}
	if !status.Exists {
		return status, nil
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		return status, fmt.Errorf("count passages: %w", err)
	}
	status.Passages = count

	dims, err := s.store.Dimensions(ctx)
	if err != nil {
		return status, fmt.Errorf("index dimensions: %w", err)
	}
	status.Dimensions = dims

	if info, err := os.Stat(s.store.Path()); err == nil {
		status.ModifiedAt = info.ModTime()
	}

	return status, nil
}

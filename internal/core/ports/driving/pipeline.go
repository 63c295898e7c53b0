package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// BuildReport summarises a completed index build.
type BuildReport struct {
	// Pages is the number of pages loaded from the source.
	Pages int

	// Passages is the number of passages indexed.
	Passages int

	// Batches is the number of insert batches committed.
	Batches int

	// Elapsed is the wall-clock build duration.
	Elapsed time.Duration
}

// IndexStatus describes the persisted index.
type IndexStatus struct {
	// Exists reports whether a persisted index is present.
	Exists bool

	// Path is the index persistence path.
	Path string

	// Passages is the number of indexed passages (0 when absent).
	Passages int

	// Dimensions is the embedding dimension (0 when absent or empty).
	Dimensions int

	// ModifiedAt is the last modification time of the persisted index.
	ModifiedAt time.Time
}

// IndexService builds and inspects the vector index.
type IndexService interface {
	// Build performs a destructive, non-incremental rebuild of the index
	// from the configured source document. Callers who need the previous
	// index must copy it out first.
	Build(ctx context.Context) (BuildReport, error)

	// Status reports whether the index exists and its vital statistics.
	Status(ctx context.Context) (IndexStatus, error)
}

// AnswerService answers questions over the indexed corpus.
type AnswerService interface {
	// Ask processes a single question. Pre-flight failures (blank
	// question, missing index, unsupported type) are returned as an
	// error; failures during retrieval or generation are captured in
	// the record with Err set. Ask never panics on a question failure.
	Ask(ctx context.Context, question string, qtype domain.QuestionType) (domain.AnswerRecord, error)

	// AskBatch processes up to the configured maximum of questions
	// sequentially and fault-isolated: one question's failure does not
	// abort the rest, and the result has exactly one entry per input
	// question in input order. Empty or oversized batches fail with
	// domain.ErrInvalidInput.
	AskBatch(ctx context.Context, questions []string, qtype domain.QuestionType) (domain.BatchResult, error)

	// Query performs similarity search without generation.
	Query(ctx context.Context, text string, k int) (domain.RetrievalResult, error)
}

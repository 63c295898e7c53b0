package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// PageLoader extracts pages from a source document.
//
// The underlying source is one-pass and not restartable; Load fully
// consumes it and returns the materialised pages. A missing path fails
// with domain.ErrNotFound.
type PageLoader interface {
	Load(ctx context.Context, path string) ([]domain.Page, error)
}

// Package textfile loads plain-text documents as pages. A form-feed
// character (\f) marks a page boundary, matching how PDF-to-text
// converters delimit pages; documents without form feeds load as a
// single page.
package textfile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.PageLoader = (*Loader)(nil)

// Loader reads documents from the local filesystem.
type Loader struct{}

// New creates a text file loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the file at path and splits it into pages on form feeds.
// Every page carries the file path and its 1-based page number in its
// metadata. Blank pages are dropped.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}

	var pages []domain.Page
	for i, raw := range strings.Split(string(data), "\f") {
		content := strings.TrimSpace(raw)
		if content == "" {
			continue
		}
		pages = append(pages, domain.Page{
			Content: content,
			Metadata: map[string]any{
				domain.MetaSource: path,
				domain.MetaPage:   i + 1,
			},
		})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: document %s is empty", domain.ErrInvalidInput, path)
	}
	return pages, nil
}

// Package chunker splits extracted pages into overlapping fixed-size
// passages for indexing.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultChunkSize is the default number of characters per passage.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters
// between neighbouring passages.
const DefaultOverlap = 500

// sampleIndex is the passage logged as a diagnostic sample after a
// split. Fewer passages than this is a normal condition.
const sampleIndex = 10

// Splitter splits page content into overlapping passages.
type Splitter struct {
	chunkSize int
	overlap   int
	separator string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the passage size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

// WithOverlap sets the overlap between passages in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// WithSeparator enables separator-aware splitting. The separator is a
// literal string, not a regular expression. When a window would end
// mid-unit and the separator occurs late enough in the window, the
// window end backs off to the separator instead of cutting through it.
func WithSeparator(sep string) Option {
	return func(s *Splitter) {
		s.separator = sep
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Split scans each page left to right, emitting windows of chunkSize
// characters that advance by chunkSize-overlap. StartIndex records the
// window start within the page content. A tail shorter than the overlap
// folds into the final passage.
//
// Requires chunkSize > overlap >= 0 and at least one page; violations
// fail with domain.ErrInvalidInput. Input pages are never mutated.
func (s *Splitter) Split(pages []domain.Page) ([]domain.Passage, error) {
	if s.overlap < 0 || s.chunkSize <= s.overlap {
		return nil, fmt.Errorf("%w: chunk size %d must exceed overlap %d",
			domain.ErrInvalidInput, s.chunkSize, s.overlap)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to split", domain.ErrInvalidInput)
	}

	stride := s.chunkSize - s.overlap
	var passages []domain.Passage

	for _, page := range pages {
		passages = append(passages, s.splitPage(page, stride)...)
	}

	logger.Debug("Split %d pages into %d passages", len(pages), len(passages))
	if len(passages) > sampleIndex {
		sample := passages[sampleIndex]
		logger.Debug("Sample passage %d: start=%d len=%d", sampleIndex, sample.StartIndex, len(sample.Content))
	} else {
		logger.Debug("Not enough passages for a diagnostic sample")
	}

	return passages, nil
}

// splitPage emits the windows for a single page.
func (s *Splitter) splitPage(page domain.Page, stride int) []domain.Passage {
	content := page.Content
	n := len(content)
	if n == 0 {
		return nil
	}

	passages := make([]domain.Passage, 0, n/stride+1)

	for start := 0; start < n; start += stride {
		end := start + s.chunkSize
		last := false

		switch {
		case end >= n:
			end = n
			last = true
		case n-end < s.overlap:
			// Tail shorter than the overlap folds into this passage.
			end = n
			last = true
		default:
			end = s.separatorEnd(content, start, end)
		}

		passages = append(passages, domain.Passage{
			ID:         uuid.New().String(),
			Content:    content[start:end],
			StartIndex: start,
			Metadata:   cloneMetadata(page.Metadata),
		})

		if last {
			break
		}
	}

	return passages
}

// separatorEnd backs a window end off to the last separator inside the
// window. The end never moves below start+stride, so every character is
// still covered by some passage.
func (s *Splitter) separatorEnd(content string, start, end int) int {
	if s.separator == "" {
		return end
	}

	idx := strings.LastIndex(content[start:end], s.separator)
	if idx < 0 {
		return end
	}

	sepEnd := start + idx + len(s.separator)
	stride := s.chunkSize - s.overlap
	if sepEnd < start+stride {
		return end
	}
	return sepEnd
}

func cloneMetadata(m map[string]any) map[string]any {
	clone := make(map[string]any, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

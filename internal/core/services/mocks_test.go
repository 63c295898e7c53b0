package services

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// memStore is an in-memory VectorStore for tests: brute-force inner
// product over whatever vectors were inserted.
type memStore struct {
	mu       sync.RWMutex
	built    bool
	passages []domain.Passage
	vectors  [][]float32

	rebuildErr error
	addErrOn   int // 1-based AddBatch call to fail, 0 = never
	addCalls   int
	searchErr  error
}

var _ driven.VectorStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{}
}

// seed marks the store as built and inserts passages directly.
func (s *memStore) seed(passages []domain.Passage, vectors [][]float32) {
	s.built = true
	s.passages = append(s.passages, passages...)
	s.vectors = append(s.vectors, vectors...)
}

func (s *memStore) Rebuild(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rebuildErr != nil {
		return s.rebuildErr
	}
	s.built = true
	s.passages = nil
	s.vectors = nil
	s.addCalls = 0
	return nil
}

func (s *memStore) AddBatch(_ context.Context, passages []domain.Passage, vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCalls++
	if s.addErrOn != 0 && s.addCalls == s.addErrOn {
		return domain.ErrStorage
	}
	s.passages = append(s.passages, passages...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *memStore) Search(_ context.Context, vector []float32, k int) (domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if !s.built {
		return nil, domain.ErrNotFound
	}

	results := make(domain.RetrievalResult, 0, len(s.passages))
	for i := range s.passages {
		var score float64
		for j := range vector {
			if j < len(s.vectors[i]) {
				score += float64(vector[j]) * float64(s.vectors[i][j])
			}
		}
		results = append(results, domain.ScoredPassage{Passage: s.passages[i], Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (s *memStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages), nil
}

func (s *memStore) Dimensions(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.vectors) == 0 {
		return 0, nil
	}
	return len(s.vectors[0]), nil
}

func (s *memStore) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built
}

func (s *memStore) Path() string { return "/tmp/docqa-test-index" }

func (s *memStore) Close() error { return nil }

// stubEmbedder returns canned vectors, in order for EmbedBatch and via
// embedFn for single queries.
type stubEmbedder struct {
	dims    int
	embedFn func(text string) []float32
	err     error
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func newStubEmbedder(dims int) *stubEmbedder {
	s := &stubEmbedder{dims: dims}
	s.embedFn = func(string) []float32 {
		vec := make([]float32, dims)
		vec[0] = 1
		return vec
	}
	return s
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.embedFn(text), nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.embedFn(t)
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int            { return s.dims }
func (s *stubEmbedder) ModelName() string          { return "stub-embed" }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

// stubLLM returns a canned response or error and records prompts.
type stubLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

var _ driven.LLMService = (*stubLLM)(nil)

func (s *stubLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubLLM) ModelName() string          { return "stub-llm" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

// stubLoader returns canned pages.
type stubLoader struct {
	pages []domain.Page
	err   error
}

var _ driven.PageLoader = (*stubLoader)(nil)

func (s *stubLoader) Load(context.Context, string) ([]domain.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pages, nil
}

// Package app is the composition root: it turns a loaded configuration
// into wired services and owns the lifecycle of the underlying
// adapters.
package app

import (
	"fmt"
	"io"

	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/loader/textfile"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/config"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/services"
)

// App holds the wired services for one process.
type App struct {
	Config  config.Config
	Index   driving.IndexService
	Answers driving.AnswerService

	closers []io.Closer
}

// New wires an App from the config file at cfgPath (empty means
// defaults plus environment).
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg)
}

// FromConfig wires an App from an already-loaded configuration.
func FromConfig(cfg config.Config) (*App, error) {
	a := &App{Config: cfg}

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, embedder)

	llm, err := newLLM(cfg.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, llm)

	store := sqlite.New(cfg.Index.Dir)
	a.closers = append(a.closers, store)

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Document.ChunkSize),
		chunker.WithOverlap(cfg.Document.ChunkOverlap),
	)

	a.Index = services.NewIndexer(
		textfile.New(),
		splitter,
		embedder,
		store,
		cfg.Document.Path,
		services.WithInsertBatchSize(cfg.Index.InsertBatchSize),
	)

	retriever := services.NewRetriever(embedder, store)
	a.Answers = services.NewAnswerer(
		retriever,
		llm,
		store,
		services.WithContextK(cfg.Retrieval.TopK),
		services.WithMaxBatch(cfg.Retrieval.MaxBatch),
	)

	return a, nil
}

// Close releases all adapter resources.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newEmbedder(cfg config.ProviderConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout(),
		}), nil
	case config.ProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout(),
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func newLLM(cfg config.ProviderConfig) (driven.LLMService, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Timeout:           cfg.Timeout(),
			RequestsPerMinute: cfg.RequestsPerMinute,
		}), nil
	case config.ProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Timeout:           cfg.Timeout(),
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

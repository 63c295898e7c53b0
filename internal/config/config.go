// Package config loads docqa configuration from a TOML file with
// environment variable overrides. Precedence, lowest to highest:
// built-in defaults, config file, environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Provider names accepted by the embedding and llm sections.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config is the root configuration.
type Config struct {
	Document  DocumentConfig  `toml:"document"`
	Index     IndexConfig     `toml:"index"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Embedding ProviderConfig  `toml:"embedding"`
	LLM       ProviderConfig  `toml:"llm"`
	Server    ServerConfig    `toml:"server"`
}

// DocumentConfig describes the source document and how it is chunked.
type DocumentConfig struct {
	// Path is the document to index.
	Path string `toml:"path"`

	// ChunkSize is the passage length in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the shared span between consecutive passages.
	ChunkOverlap int `toml:"chunk_overlap"`
}

// IndexConfig describes the persistent vector index.
type IndexConfig struct {
	// Dir is the index directory.
	Dir string `toml:"dir"`

	// InsertBatchSize is how many passages are embedded and inserted
	// per batch during a build.
	InsertBatchSize int `toml:"insert_batch_size"`
}

// RetrievalConfig describes retrieval and batch answering limits.
type RetrievalConfig struct {
	// TopK is the number of passages retrieved per question.
	TopK int `toml:"top_k"`

	// MaxBatch is the maximum number of questions per batch request.
	MaxBatch int `toml:"max_batch"`
}

// ProviderConfig configures one model provider (embedding or llm).
type ProviderConfig struct {
	// Provider selects the backend: "ollama" or "openai".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`

	// APIKey authenticates hosted providers. Prefer the environment
	// variable over putting keys in the config file.
	APIKey string `toml:"api_key"`

	// TimeoutSeconds bounds a single request.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RequestsPerMinute throttles requests; zero disables throttling.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// Timeout returns the request timeout as a duration, 0 when unset.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// Watch rebuilds the index when the document file changes.
	Watch bool `toml:"watch"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Document: DocumentConfig{
			Path:         "document.txt",
			ChunkSize:    1000,
			ChunkOverlap: 500,
		},
		Index: IndexConfig{
			Dir:             ".docqa/index",
			InsertBatchSize: 100,
		},
		Retrieval: RetrievalConfig{
			TopK:     3,
			MaxBatch: 10,
		},
		Embedding: ProviderConfig{
			Provider: ProviderOllama,
		},
		LLM: ProviderConfig{
			Provider: ProviderOllama,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
	}
}

// Load reads the config file at path, layered over Default and under
// environment overrides. An empty path means no file; a missing file at
// an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath returns the conventional config location, or "" if no
// file exists there.
func DefaultPath() string {
	if p := os.Getenv("DOCQA_CONFIG"); p != "" {
		return p
	}
	for _, p := range []string{"docqa.toml", filepath.Join(".docqa", "config.toml")} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyEnv overlays DOCQA_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	setString(&cfg.Document.Path, "DOCQA_DOCUMENT_PATH")
	setInt(&cfg.Document.ChunkSize, "DOCQA_CHUNK_SIZE")
	setInt(&cfg.Document.ChunkOverlap, "DOCQA_CHUNK_OVERLAP")

	setString(&cfg.Index.Dir, "DOCQA_INDEX_DIR")
	setInt(&cfg.Index.InsertBatchSize, "DOCQA_INSERT_BATCH_SIZE")

	setInt(&cfg.Retrieval.TopK, "DOCQA_TOP_K")
	setInt(&cfg.Retrieval.MaxBatch, "DOCQA_MAX_BATCH")

	setString(&cfg.Embedding.Provider, "DOCQA_EMBEDDING_PROVIDER")
	setString(&cfg.Embedding.BaseURL, "DOCQA_EMBEDDING_BASE_URL")
	setString(&cfg.Embedding.Model, "DOCQA_EMBEDDING_MODEL")
	setString(&cfg.Embedding.APIKey, "DOCQA_EMBEDDING_API_KEY")

	setString(&cfg.LLM.Provider, "DOCQA_LLM_PROVIDER")
	setString(&cfg.LLM.BaseURL, "DOCQA_LLM_BASE_URL")
	setString(&cfg.LLM.Model, "DOCQA_LLM_MODEL")
	setString(&cfg.LLM.APIKey, "DOCQA_LLM_API_KEY")

	setString(&cfg.Server.Addr, "DOCQA_SERVER_ADDR")

	// OPENAI_API_KEY is the conventional name; use it as a fallback
	// for whichever provider is set to openai.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if cfg.Embedding.Provider == ProviderOpenAI && cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = key
		}
		if cfg.LLM.Provider == ProviderOpenAI && cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = key
		}
	}
}

func (c Config) validate() error {
	if c.Document.ChunkOverlap < 0 {
		return fmt.Errorf("config: chunk_overlap must be >= 0, got %d", c.Document.ChunkOverlap)
	}
	if c.Document.ChunkSize <= c.Document.ChunkOverlap {
		return fmt.Errorf("config: chunk_size (%d) must exceed chunk_overlap (%d)",
			c.Document.ChunkSize, c.Document.ChunkOverlap)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("config: top_k must be >= 1, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MaxBatch < 1 {
		return fmt.Errorf("config: max_batch must be >= 1, got %d", c.Retrieval.MaxBatch)
	}
	if c.Index.InsertBatchSize < 1 {
		return fmt.Errorf("config: insert_batch_size must be >= 1, got %d", c.Index.InsertBatchSize)
	}
	for _, p := range []struct {
		section  string
		provider string
	}{
		{"embedding", c.Embedding.Provider},
		{"llm", c.LLM.Provider},
	} {
		switch p.provider {
		case ProviderOllama, ProviderOpenAI:
		default:
			return fmt.Errorf("config: unknown %s provider %q", p.section, p.provider)
		}
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	v := os.Getenv(env)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

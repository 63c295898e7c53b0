package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/config"
)

func TestFromConfigOllama(t *testing.T) {
	cfg := config.Default()
	cfg.Index.Dir = filepath.Join(t.TempDir(), "index")

	a, err := FromConfig(cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Index)
	assert.NotNil(t, a.Answers)
}

func TestFromConfigOpenAIRequiresKey(t *testing.T) {
	cfg := config.Default()
	cfg.Embedding.Provider = config.ProviderOpenAI
	cfg.Embedding.APIKey = ""

	_, err := FromConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestFromConfigOpenAI(t *testing.T) {
	cfg := config.Default()
	cfg.Index.Dir = filepath.Join(t.TempDir(), "index")
	cfg.Embedding.Provider = config.ProviderOpenAI
	cfg.Embedding.APIKey = "sk-test"
	cfg.LLM.Provider = config.ProviderOpenAI
	cfg.LLM.APIKey = "sk-test"

	a, err := FromConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Close())
}

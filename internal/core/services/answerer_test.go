package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func seededAnswerer(llm *stubLLM) (*Answerer, *memStore) {
	store := newMemStore()
	store.seed(
		[]domain.Passage{passage("a", "The capital of France is Paris."), passage("b", "Berlin is in Germany.")},
		[][]float32{{1, 0, 0}, {0, 1, 0}},
	)
	retriever := NewRetriever(newStubEmbedder(3), store)
	return NewAnswerer(retriever, llm, store), store
}

func TestAsk_Standard(t *testing.T) {
	llm := &stubLLM{response: "ANSWER:\nParis\nSOURCES:\ndoc.txt\nRELEVANT EXCERPTS:\nThe capital of France is Paris.\n"}
	a, _ := seededAnswerer(llm)

	rec, err := a.Ask(context.Background(), "What is the capital of France?", domain.TypeStandard)
	require.NoError(t, err)

	assert.True(t, rec.Success())
	assert.Equal(t, "What is the capital of France?", rec.Question)
	require.Equal(t, domain.ParseStructured, rec.Result.Kind)
	assert.Equal(t, "Paris", rec.Result.Answer)
	assert.Equal(t, []string{"doc.txt"}, rec.SourceIDs)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestAsk_PromptBindsContextQuestionAndSentinel(t *testing.T) {
	llm := &stubLLM{response: "ANSWER:\nParis\n"}
	a, _ := seededAnswerer(llm)

	_, err := a.Ask(context.Background(), "Where is Paris?", domain.TypeStandard)
	require.NoError(t, err)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "Question: Where is Paris?")
	assert.Contains(t, prompt, "The capital of France is Paris.")
	assert.Contains(t, prompt, NotFoundSentinel)
	assert.Contains(t, prompt, markerAnswer)
	assert.Contains(t, prompt, markerSources)
	assert.Contains(t, prompt, markerExcerpts)
}

func TestAsk_UnstructuredOutputFallsBackToRaw(t *testing.T) {
	llm := &stubLLM{response: "I could not find section markers to emit."}
	a, _ := seededAnswerer(llm)

	rec, err := a.Ask(context.Background(), "Anything?", domain.TypeStandard)
	require.NoError(t, err)

	assert.True(t, rec.Success())
	require.Equal(t, domain.ParseRaw, rec.Result.Kind)
	assert.Equal(t, "I could not find section markers to emit.", rec.Result.Raw)
}

func TestAsk_GenerationFailureCapturedInRecord(t *testing.T) {
	llm := &stubLLM{err: errors.New("model timed out")}
	a, _ := seededAnswerer(llm)

	rec, err := a.Ask(context.Background(), "Anything?", domain.TypeStandard)
	require.NoError(t, err, "generation failure must not propagate as an error")

	assert.False(t, rec.Success())
	assert.Contains(t, rec.Err, "model timed out")
	// Retrieval outcome survives the generation failure.
	assert.Equal(t, []string{"doc.txt"}, rec.SourceIDs)
}

func TestAsk_BlankQuestionRejectedBeforeRetrieval(t *testing.T) {
	a, _ := seededAnswerer(&stubLLM{})

	_, err := a.Ask(context.Background(), "   ", domain.TypeStandard)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAsk_MissingIndexRejectedBeforeRetrieval(t *testing.T) {
	store := newMemStore() // never built
	retriever := NewRetriever(newStubEmbedder(3), store)
	a := NewAnswerer(retriever, &stubLLM{}, store)

	_, err := a.Ask(context.Background(), "Anything?", domain.TypeStandard)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAsk_UnsupportedType(t *testing.T) {
	a, _ := seededAnswerer(&stubLLM{})

	_, err := a.Ask(context.Background(), "Anything?", domain.QuestionType("creative"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
}

func TestAsk_NumericalKeepsRawOutput(t *testing.T) {
	llm := &stubLLM{response: "$42 million"}
	a, _ := seededAnswerer(llm)

	rec, err := a.Ask(context.Background(), "How much was allocated?", domain.TypeNumerical)
	require.NoError(t, err)

	assert.True(t, rec.Success())
	require.Equal(t, domain.ParseRaw, rec.Result.Kind)
	assert.Equal(t, "$42 million", rec.Result.Raw)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "numerical value")
}

func TestAsk_QueryModeSkipsGeneration(t *testing.T) {
	llm := &stubLLM{}
	a, _ := seededAnswerer(llm)

	rec, err := a.Ask(context.Background(), "capital", domain.TypeQuery)
	require.NoError(t, err)

	assert.True(t, rec.Success())
	assert.Empty(t, llm.prompts, "query mode must not call the model")
	require.Equal(t, domain.ParseRaw, rec.Result.Kind)
	assert.True(t, strings.Contains(rec.Result.Raw, "The capital of France is Paris."))
}

func TestAsk_NilLLMReportedPerRecord(t *testing.T) {
	store := newMemStore()
	store.seed([]domain.Passage{passage("a", "text")}, [][]float32{{1, 0, 0}})
	retriever := NewRetriever(newStubEmbedder(3), store)
	a := NewAnswerer(retriever, nil, store)

	rec, err := a.Ask(context.Background(), "Anything?", domain.TypeStandard)
	require.NoError(t, err)
	assert.False(t, rec.Success())
	assert.Contains(t, rec.Err, "LLM service unavailable")
}

func TestQuery(t *testing.T) {
	a, _ := seededAnswerer(&stubLLM{})

	results, err := a.Query(context.Background(), "capital", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Passage.ID)
}

func TestQuery_MissingIndex(t *testing.T) {
	store := newMemStore()
	a := NewAnswerer(NewRetriever(newStubEmbedder(3), store), nil, store)

	_, err := a.Query(context.Background(), "capital", 3)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

func TestNewServer(t *testing.T) {
	t.Run("requires answer service", func(t *testing.T) {
		_, err := NewServer(&Ports{})
		require.ErrorIs(t, err, ErrMissingAnswerService)
	})

	t.Run("index service is optional", func(t *testing.T) {
		_, err := NewServer(&Ports{Answers: &mockAnswerService{}})
		require.NoError(t, err)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns structured answer", func(t *testing.T) {
		mockAnswers := &mockAnswerService{
			record: domain.AnswerRecord{
				Result: domain.ParsedAnswer{
					Kind:     domain.ParseStructured,
					Answer:   "Paris",
					Sources:  "doc1",
					Excerpts: "the capital is Paris",
				},
			},
		}

		server, err := NewServer(&Ports{Answers: mockAnswers})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "capital?"})

		require.NoError(t, err)
		assert.True(t, output.Success)
		assert.Equal(t, "Paris", output.Answer)
		assert.Equal(t, "doc1", output.Sources)
		assert.Equal(t, "the capital is Paris", output.Excerpts)
		assert.Empty(t, output.Raw)
	})

	t.Run("returns raw fallback", func(t *testing.T) {
		mockAnswers := &mockAnswerService{
			record: domain.AnswerRecord{
				Result: domain.RawAnswer("no markers here"),
			},
		}

		server, err := NewServer(&Ports{Answers: mockAnswers})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "capital?"})

		require.NoError(t, err)
		assert.Equal(t, "no markers here", output.Raw)
		assert.Empty(t, output.Answer)
	})

	t.Run("rejects unknown question type", func(t *testing.T) {
		server, err := NewServer(&Ports{Answers: &mockAnswerService{}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q", Type: "poetic"})
		require.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("returns error on service failure", func(t *testing.T) {
		mockAnswers := &mockAnswerService{err: errors.New("index missing")}
		server, err := NewServer(&Ports{Answers: mockAnswers})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index missing")
	})
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages", func(t *testing.T) {
		mockAnswers := &mockAnswerService{
			results: domain.RetrievalResult{
				{
					Passage: domain.Passage{
						Content:    "the capital is Paris",
						StartIndex: 10,
						Metadata:   map[string]any{domain.MetaSource: "doc1"},
					},
					Score: 0.95,
				},
			},
		}

		server, err := NewServer(&Ports{Answers: mockAnswers})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "capital", K: 5})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "the capital is Paris", output.Results[0].Content)
		assert.Equal(t, 0.95, output.Results[0].Score)
		assert.Equal(t, 10, output.Results[0].StartIndex)
		assert.Equal(t, "doc1", output.Results[0].Source)
		assert.Equal(t, 5, mockAnswers.lastK)
	})

	t.Run("default k is 3", func(t *testing.T) {
		mockAnswers := &mockAnswerService{}
		server, err := NewServer(&Ports{Answers: mockAnswers})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "capital"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 3, mockAnswers.lastK)
	})
}

func TestServer_handleStatus(t *testing.T) {
	ctx := context.Background()

	mockIndex := &mockIndexService{
		status: driving.IndexStatus{
			Exists:     true,
			Path:       "/tmp/idx",
			Passages:   42,
			Dimensions: 768,
		},
	}

	server, err := NewServer(&Ports{Answers: &mockAnswerService{}, Index: mockIndex})
	require.NoError(t, err)

	_, output, err := server.handleStatus(ctx, nil, struct{}{})

	require.NoError(t, err)
	assert.True(t, output.Exists)
	assert.Equal(t, "/tmp/idx", output.Path)
	assert.Equal(t, 42, output.Passages)
	assert.Equal(t, 768, output.Dimensions)
}

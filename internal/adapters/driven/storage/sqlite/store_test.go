package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "index"))
	t.Cleanup(func() { s.Close() })
	return s
}

func passage(id, content string) domain.Passage {
	return domain.Passage{
		ID:      id,
		Content: content,
		Metadata: map[string]any{
			domain.MetaSource: id,
		},
	}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	assert.False(t, s.Exists())

	_, err := s.Search(ctx, []float32{1, 0}, 3)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Count(ctx)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Rebuild(ctx))
	assert.True(t, s.Exists())

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	dims, err := s.Dimensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, dims)
}

func TestStoreSearchRanking(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Rebuild(ctx))

	err := s.AddBatch(ctx,
		[]domain.Passage{
			passage("a", "first"),
			passage("b", "second"),
			passage("c", "third"),
		},
		[][]float32{
			{1, 0},
			{0, 1},
			{0.6, 0.8},
		})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "c", results[1].ID)
	assert.InDelta(t, 0.6, results[1].Score, 1e-6)

	// Fewer stored passages than k returns all of them.
	results, err = s.Search(ctx, []float32{0, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, "b", results[0].ID)
}

func TestStoreSearchEmptyIndex(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Rebuild(ctx))

	results, err := s.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = s.Search(ctx, []float32{1, 0}, 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStoreMetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Rebuild(ctx))

	p := domain.Passage{
		ID:         "p1",
		Content:    "hello",
		StartIndex: 42,
		Metadata: map[string]any{
			domain.MetaSource: "report.txt",
			domain.MetaPage:   float64(3),
		},
	}
	require.NoError(t, s.AddBatch(ctx, []domain.Passage{p}, [][]float32{{1}}))

	results, err := s.Search(ctx, []float32{1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	got := results[0].Passage
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, 42, got.StartIndex)
	assert.Equal(t, "report.txt", got.Source())
	assert.Equal(t, float64(3), got.Metadata[domain.MetaPage])
}

func TestStoreRebuildWipesContents(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Rebuild(ctx))
	require.NoError(t, s.AddBatch(ctx,
		[]domain.Passage{passage("old", "stale")},
		[][]float32{{1, 0}}))

	require.NoError(t, s.Rebuild(ctx))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	dims, err := s.Dimensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, dims)
}

func TestStoreDimensionEnforcement(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Rebuild(ctx))

	require.NoError(t, s.AddBatch(ctx,
		[]domain.Passage{passage("a", "x")},
		[][]float32{{1, 0, 0}}))

	dims, err := s.Dimensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dims)

	err = s.AddBatch(ctx,
		[]domain.Passage{passage("b", "y")},
		[][]float32{{1, 0}})
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)

	err = s.AddBatch(ctx,
		[]domain.Passage{passage("c", "z")},
		[][]float32{{1, 0}, {0, 1}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStoreCommittedBatchesSurvive(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	require.NoError(t, s.Rebuild(ctx))

	for i := 0; i < 2; i++ {
		require.NoError(t, s.AddBatch(ctx,
			[]domain.Passage{passage(fmt.Sprintf("p%d", i), "committed")},
			[][]float32{{1, 0}}))
	}

	// A failed batch must not disturb what earlier batches committed.
	err := s.AddBatch(ctx,
		[]domain.Passage{passage("bad", "mismatched")},
		[][]float32{{1, 0, 0}})
	require.Error(t, err)

	require.NoError(t, s.Close())

	reopened := New(s.Path())
	defer reopened.Close()
	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStoreErrorsAreStorageClass(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	err := s.Rebuild(ctx)
	require.NoError(t, err)

	// Opening a store over a missing path classifies as not found,
	// never as a raw os error.
	missing := New(filepath.Join(t.TempDir(), "nope"))
	defer missing.Close()
	_, err = missing.Dimensions(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

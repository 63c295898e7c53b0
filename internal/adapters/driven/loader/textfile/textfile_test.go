package textfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadSinglePage(t *testing.T) {
	path := writeDoc(t, "just one page of text")

	pages, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "just one page of text", pages[0].Content)
	assert.Equal(t, path, pages[0].Metadata[domain.MetaSource])
	assert.Equal(t, 1, pages[0].Metadata[domain.MetaPage])
}

func TestLoadFormFeedPages(t *testing.T) {
	path := writeDoc(t, "page one\fpage two\f\fpage four")

	pages, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "page one", pages[0].Content)
	assert.Equal(t, 1, pages[0].Metadata[domain.MetaPage])
	assert.Equal(t, "page two", pages[1].Content)
	assert.Equal(t, 2, pages[1].Metadata[domain.MetaPage])
	// Blank page three is dropped; page numbering still follows position.
	assert.Equal(t, "page four", pages[2].Content)
	assert.Equal(t, 4, pages[2].Metadata[domain.MetaPage])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeDoc(t, "  \n\f \n ")
	_, err := New().Load(context.Background(), path)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

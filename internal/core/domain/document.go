package domain

// Metadata keys set by loaders and carried through the pipeline.
const (
	// MetaSource is the source identifier (usually the document path).
	MetaSource = "source"

	// MetaPage is the 1-based page number within the source.
	MetaPage = "page"
)

// Page is one unit of extracted source content, as produced by a
// PageLoader. Immutable once loaded.
type Page struct {
	// Content is the extracted text of the page.
	Content string

	// Metadata contains at minimum MetaSource and MetaPage.
	Metadata map[string]any
}

// Source returns the source identifier from the page metadata.
func (p Page) Source() string {
	s, _ := p.Metadata[MetaSource].(string)
	return s
}

// Passage is a contiguous substring of a Page's content, the unit of
// retrieval. Passages are created by the chunker and immutable thereafter;
// they live until the index is rebuilt.
type Passage struct {
	// ID is the unique identifier for the passage.
	ID string

	// Content is the passage text.
	Content string

	// StartIndex is the character offset of the passage within its
	// parent page content.
	StartIndex int

	// Metadata is inherited from the parent Page.
	Metadata map[string]any
}

// Source returns the source identifier from the passage metadata.
func (p Passage) Source() string {
	s, _ := p.Metadata[MetaSource].(string)
	return s
}

package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed input: a blank question, an
	// empty or oversized batch, or bad chunking parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist, most
	// commonly the vector index before a build.
	ErrNotFound = errors.New("not found")

	// ErrStorage indicates a filesystem or database failure while
	// rebuilding or persisting the index.
	ErrStorage = errors.New("storage failure")

	// ErrDimensionMismatch indicates the query embedding dimension does
	// not match the dimension the index was built with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrGeneration indicates the language model call failed or timed out.
	ErrGeneration = errors.New("generation failed")

	// ErrUnsupportedType indicates an unknown question type.
	ErrUnsupportedType = errors.New("unsupported question type")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Nothing can be indexed or retrieved without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the language model service is not
	// configured. Similarity search still works; answering does not.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)

// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PageLoader: extracts pages from a source document
//   - EmbeddingService: turns text into fixed-dimension vectors
//   - VectorStore: persists vectors and serves nearest-neighbour search
//
// # Optional Interfaces
//
//   - LLMService: language model generation. Without it, similarity
//     search still works but answering is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven

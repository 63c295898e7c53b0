// Package sqlite persists the vector index in a SQLite database.
//
// One index directory holds one database file. The directory's existence
// is the readiness signal all front ends probe: a destructive Rebuild
// removes it entirely before recreating it, so a half-built index is
// never observable as ready.
//
// Embeddings are stored as little-endian float32 BLOBs. Search is an
// exhaustive inner-product scan; corpora at the single-document scale
// this tool targets do not need an ANN structure.
package sqlite

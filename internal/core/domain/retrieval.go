package domain

// ScoredPassage is a retrieval hit: a passage plus its similarity score.
// The passage is embedded so hits expose its fields directly.
type ScoredPassage struct {
	Passage

	// Score is the cosine similarity to the query (inner product of
	// L2-normalised vectors).
	Score float64
}

// RetrievalResult is an ordered sequence of hits, descending by score,
// at most k entries. Produced per query, never persisted.
type RetrievalResult []ScoredPassage

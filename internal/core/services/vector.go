package services

import "math"

// l2Normalize scales a vector to unit length, in place, and returns it.
//
// Every vector that enters the store and every query vector passes
// through this one function. Cosine similarity via inner product is only
// meaningful when both sides are normalised identically, so there must
// be exactly one place that does it.
func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}

	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

package domain

import "math"

// CosineSimilarity returns the normalised dot product of two vectors.
// The result is NaN when either vector has zero norm or the lengths
// differ; callers must treat NaN as "not comparable" and exclude such
// pairs from ranking.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.NaN()
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return math.NaN()
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EuclideanDistance returns the straight-line distance between two
// vectors. It is an auxiliary metric; similarity ranking uses cosine.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

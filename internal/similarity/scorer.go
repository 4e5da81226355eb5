// Package similarity computes pairwise cosine similarity between embedding
// vectors and builds the similarity graph over a search result set.
package similarity

import (
	"fmt"
	"math"

	"github.com/scholia/literature-search-service/internal/domain"
)

// Cosine returns the cosine similarity between two embedding vectors:
// dot(a,b) / (|a|*|b|). If either vector has zero norm the result is exactly
// 0.0; a zero vector is never similar to anything. Vectors of different
// dimensionality are a caller contract violation.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: embedding dimensions differ (%d vs %d)", domain.ErrInvalidInput, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

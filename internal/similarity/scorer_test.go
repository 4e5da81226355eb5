package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholia/literature-search-service/internal/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float64{1, 2, 3},
			b:    []float64{1, 2, 3},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float64{1, 0},
			b:    []float64{0, 1},
			want: 0.0,
		},
		{
			name: "opposite vectors",
			a:    []float64{1, 1},
			b:    []float64{-1, -1},
			want: -1.0,
		},
		{
			name: "zero vector left",
			a:    []float64{0, 0, 0},
			b:    []float64{1, 2, 3},
			want: 0.0,
		},
		{
			name: "zero vector right",
			a:    []float64{1, 2, 3},
			b:    []float64{0, 0, 0},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine([]float64{1, 2}, []float64{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCosineSymmetry(t *testing.T) {
	vectors := [][]float64{
		{0.5, -0.2, 0.8},
		{1, 2, 3},
		{-0.1, 0.1, -0.1},
		{0.33, 0.66, 0.99},
	}

	for i := range vectors {
		for j := range vectors {
			ab, err := Cosine(vectors[i], vectors[j])
			require.NoError(t, err)
			ba, err := Cosine(vectors[j], vectors[i])
			require.NoError(t, err)
			assert.Equal(t, ab, ba, "score(a,b) must equal score(b,a)")
		}
	}
}

func TestCosineBounded(t *testing.T) {
	vectors := [][]float64{
		{3, -1, 2},
		{-5, 4, 0.5},
		{0.001, 1000, -0.5},
	}

	for i := range vectors {
		for j := range vectors {
			score, err := Cosine(vectors[i], vectors[j])
			require.NoError(t, err)
			assert.False(t, math.IsNaN(score))
			assert.GreaterOrEqual(t, score, -1.0-1e-9)
			assert.LessOrEqual(t, score, 1.0+1e-9)
		}
	}
}

package similarity

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(threshold float64) *GraphBuilder {
	return NewGraphBuilder(threshold, zerolog.Nop())
}

func TestBuildSingleEdgeAboveThreshold(t *testing.T) {
	// Items 1 and 2 are nearly parallel; item 3 is orthogonal to both.
	items := []Item{
		{ID: "doc-1", Embedding: []float64{1, 0.1, 0}},
		{ID: "doc-2", Embedding: []float64{1, 0.2, 0}},
		{ID: "doc-3", Embedding: []float64{0, 0, 1}},
	}

	links := newTestBuilder(0.4).Build(items)

	require.Len(t, links, 1)
	assert.Equal(t, "doc-1", links[0].Source)
	assert.Equal(t, "doc-2", links[0].Target)
	assert.GreaterOrEqual(t, links[0].Similarity, 0.4)
}

func TestBuildThresholdAndUniqueness(t *testing.T) {
	items := []Item{
		{ID: "a", Embedding: []float64{1, 0}},
		{ID: "b", Embedding: []float64{0.9, 0.1}},
		{ID: "c", Embedding: []float64{0.8, 0.3}},
		{ID: "d", Embedding: []float64{-1, 0}},
	}

	links := newTestBuilder(0.4).Build(items)

	seen := make(map[[2]string]bool)
	for _, l := range links {
		assert.GreaterOrEqual(t, l.Similarity, 0.4, "every emitted link meets the threshold")
		assert.NotEqual(t, l.Source, l.Target, "no self loops")

		key := [2]string{l.Source, l.Target}
		if l.Source > l.Target {
			key = [2]string{l.Target, l.Source}
		}
		assert.False(t, seen[key], "unordered pair %v appears twice", key)
		seen[key] = true
	}
}

func TestBuildSkipsItemsWithoutEmbedding(t *testing.T) {
	items := []Item{
		{ID: "a", Embedding: []float64{1, 0}},
		{ID: "b"},
		{ID: "c", Embedding: []float64{1, 0.01}},
	}

	links := newTestBuilder(0.4).Build(items)

	require.Len(t, links, 1)
	assert.Equal(t, "a", links[0].Source)
	assert.Equal(t, "c", links[0].Target)
}

func TestBuildDeterministicOrder(t *testing.T) {
	items := []Item{
		{ID: "p1", Embedding: []float64{1, 0.1}},
		{ID: "p2", Embedding: []float64{1, 0.2}},
		{ID: "p3", Embedding: []float64{1, 0.3}},
	}

	first := newTestBuilder(0.4).Build(items)
	second := newTestBuilder(0.4).Build(items)
	assert.Equal(t, first, second)

	// Pair iteration order: (p1,p2), (p1,p3), (p2,p3).
	require.Len(t, first, 3)
	assert.Equal(t, "p1", first[0].Source)
	assert.Equal(t, "p2", first[0].Target)
	assert.Equal(t, "p1", first[1].Source)
	assert.Equal(t, "p3", first[1].Target)
	assert.Equal(t, "p2", first[2].Source)
	assert.Equal(t, "p3", first[2].Target)
}

func TestBuildRoundsToFourDecimals(t *testing.T) {
	items := []Item{
		{ID: "x", Embedding: []float64{1, 0.05, 0.3}},
		{ID: "y", Embedding: []float64{0.9, 0.4, 0.1}},
	}

	links := newTestBuilder(0.1).Build(items)
	require.Len(t, links, 1)

	scaled := links[0].Similarity * 10000
	assert.InDelta(t, scaled, float64(int64(scaled+0.5)), 1e-6, "score has at most four decimal places")
}

func TestBuildEmptyInput(t *testing.T) {
	assert.Empty(t, newTestBuilder(0.4).Build(nil))
	assert.Empty(t, newTestBuilder(0.4).Build([]Item{}))
}

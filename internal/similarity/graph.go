package similarity

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/scholia/literature-search-service/internal/domain"
)

// DefaultThreshold is the minimum cosine similarity for an edge to be emitted.
const DefaultThreshold = 0.4

// Item pairs a document identifier with its embedding vector. Items without
// an embedding are skipped during graph construction.
type Item struct {
	ID        string
	Embedding []float64
}

// GraphBuilder builds the pairwise similarity graph over a result set.
// Result sets are bounded by the caller's limit, so the O(n²) pair iteration
// stays small.
type GraphBuilder struct {
	threshold float64
	logger    zerolog.Logger
}

// NewGraphBuilder creates a GraphBuilder with the given threshold.
// A threshold of 0 selects DefaultThreshold.
func NewGraphBuilder(threshold float64, logger zerolog.Logger) *GraphBuilder {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return &GraphBuilder{
		threshold: threshold,
		logger:    logger.With().Str("component", "similarity-graph").Logger(),
	}
}

// Build computes the similarity for every unordered pair of items and returns
// the links whose score meets the threshold. Output order follows the pair
// iteration (ascending i, then j), so it is deterministic for a given input
// order. Scores are rounded to four decimal places for response stability.
func (b *GraphBuilder) Build(items []Item) []domain.SimilarityLink {
	links := make([]domain.SimilarityLink, 0)

	for i := 0; i < len(items); i++ {
		if len(items[i].Embedding) == 0 {
			b.logger.Debug().Str("id", items[i].ID).Msg("item has no embedding, skipping")
			continue
		}
		for j := i + 1; j < len(items); j++ {
			if len(items[j].Embedding) == 0 {
				continue
			}

			score, err := Cosine(items[i].Embedding, items[j].Embedding)
			if err != nil {
				b.logger.Warn().
					Err(err).
					Str("source", items[i].ID).
					Str("target", items[j].ID).
					Msg("skipping pair with incompatible embeddings")
				continue
			}

			if score >= b.threshold {
				links = append(links, domain.SimilarityLink{
					Source:     items[i].ID,
					Target:     items[j].ID,
					Similarity: round4(score),
				})
			}
		}
	}

	b.logger.Debug().Int("edges", len(links)).Int("items", len(items)).Msg("similarity graph built")
	return links
}

// round4 rounds to four decimal places (round half to even).
func round4(v float64) float64 {
	return math.RoundToEven(v*10000) / 10000
}

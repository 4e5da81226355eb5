// Package search implements the query orchestration pipeline: provider
// dispatch, reference grouping, similarity graph assembly, and answer
// synthesis.
package search

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/scholia/literature-search-service/internal/domain"
	"github.com/scholia/literature-search-service/internal/providers/ragserver"
)

// Grouper collapses chunk-level search hits into document-level references.
type Grouper struct {
	logger zerolog.Logger
}

// NewGrouper creates a new reference grouper.
func NewGrouper(logger zerolog.Logger) *Grouper {
	return &Grouper{logger: logger}
}

// Group collapses a flat list of chunk hits into one Reference per distinct
// document, in first-seen document order. The first chunk seen for a document
// supplies the document metadata; later chunks never overwrite it. Chunks
// within a reference are sorted ascending by chunk index. Chunks without a
// document identifier cannot be grouped and are dropped with a log line.
func (g *Grouper) Group(chunks []ragserver.ChunkResult) []domain.Reference {
	order := make([]string, 0, len(chunks))
	byDoc := make(map[string]*domain.Reference, len(chunks))

	for _, chunk := range chunks {
		if chunk.DOI == "" {
			g.logger.Warn().
				Int("chunk_index", chunk.ChunkIndex).
				Msg("dropping chunk without document identifier")
			continue
		}

		ref, ok := byDoc[chunk.DOI]
		if !ok {
			ref = &domain.Reference{
				PaperID:         chunk.DOI,
				Title:           chunk.Title,
				Authors:         domain.SplitAuthors(chunk.Authors),
				PublicationDate: chunk.Published,
			}
			byDoc[chunk.DOI] = ref
			order = append(order, chunk.DOI)
		}

		ref.Chunks = append(ref.Chunks, domain.Chunk{
			DocumentID: chunk.DOI,
			Content:    chunk.Content,
			Index:      chunk.ChunkIndex,
			Score:      chunk.SimilarityScore,
		})
	}

	refs := make([]domain.Reference, 0, len(order))
	for _, id := range order {
		ref := byDoc[id]
		sort.SliceStable(ref.Chunks, func(i, j int) bool {
			return ref.Chunks[i].Index < ref.Chunks[j].Index
		})
		refs = append(refs, *ref)
	}

	return refs
}

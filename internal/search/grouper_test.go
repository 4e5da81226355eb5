package search

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholia/literature-search-service/internal/providers/ragserver"
)

func newTestGrouper() *Grouper {
	return NewGrouper(zerolog.Nop())
}

func TestGrouper_Group(t *testing.T) {
	t.Run("three chunks from two documents group into two references", func(t *testing.T) {
		chunks := []ragserver.ChunkResult{
			{DOI: "10.1/aaa", Title: "Paper A", Authors: "Alice Smith, Bob Jones", Published: "2023-01-15", Content: "a2", ChunkIndex: 2, SimilarityScore: 0.8},
			{DOI: "10.1/bbb", Title: "Paper B", Authors: "Carol White", Published: "2022-06-01", Content: "b0", ChunkIndex: 0, SimilarityScore: 0.7},
			{DOI: "10.1/aaa", Title: "Paper A", Authors: "Alice Smith, Bob Jones", Published: "2023-01-15", Content: "a0", ChunkIndex: 0, SimilarityScore: 0.9},
		}

		refs := newTestGrouper().Group(chunks)

		require.Len(t, refs, 2)

		// First-seen document order.
		assert.Equal(t, "10.1/aaa", refs[0].PaperID)
		assert.Equal(t, "10.1/bbb", refs[1].PaperID)

		assert.Equal(t, "Paper A", refs[0].Title)
		assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, refs[0].Authors)
		assert.Equal(t, "2023-01-15", refs[0].PublicationDate)

		// Chunks sorted ascending by index within each reference.
		require.Len(t, refs[0].Chunks, 2)
		assert.Equal(t, 0, refs[0].Chunks[0].Index)
		assert.Equal(t, 2, refs[0].Chunks[1].Index)
		assert.Equal(t, "a0", refs[0].Chunks[0].Content)

		require.Len(t, refs[1].Chunks, 1)
		assert.Equal(t, "b0", refs[1].Chunks[0].Content)
	})

	t.Run("first chunk wins document metadata", func(t *testing.T) {
		chunks := []ragserver.ChunkResult{
			{DOI: "10.1/aaa", Title: "Original Title", Authors: "Alice Smith", Published: "2023", Content: "c1", ChunkIndex: 0},
			{DOI: "10.1/aaa", Title: "Drifted Title", Authors: "Someone Else", Published: "1999", Content: "c2", ChunkIndex: 1},
		}

		refs := newTestGrouper().Group(chunks)

		require.Len(t, refs, 1)
		assert.Equal(t, "Original Title", refs[0].Title)
		assert.Equal(t, []string{"Alice Smith"}, refs[0].Authors)
		assert.Equal(t, "2023", refs[0].PublicationDate)
		assert.Len(t, refs[0].Chunks, 2)
	})

	t.Run("chunk without document id is dropped", func(t *testing.T) {
		chunks := []ragserver.ChunkResult{
			{DOI: "", Title: "Orphan", Content: "lost", ChunkIndex: 0},
			{DOI: "10.1/aaa", Title: "Paper A", Content: "kept", ChunkIndex: 0},
		}

		refs := newTestGrouper().Group(chunks)

		require.Len(t, refs, 1)
		assert.Equal(t, "10.1/aaa", refs[0].PaperID)
	})

	t.Run("absent author field yields empty list", func(t *testing.T) {
		chunks := []ragserver.ChunkResult{
			{DOI: "10.1/aaa", Title: "Paper A", Authors: "", Content: "c", ChunkIndex: 0},
		}

		refs := newTestGrouper().Group(chunks)

		require.Len(t, refs, 1)
		assert.Equal(t, []string{}, refs[0].Authors)
	})

	t.Run("grouping is idempotent", func(t *testing.T) {
		chunks := []ragserver.ChunkResult{
			{DOI: "10.1/aaa", Title: "Paper A", Authors: "Alice Smith, Bob Jones", Published: "2023", Content: "a1", ChunkIndex: 1, SimilarityScore: 0.6},
			{DOI: "10.1/aaa", Title: "Paper A", Authors: "Alice Smith, Bob Jones", Published: "2023", Content: "a0", ChunkIndex: 0, SimilarityScore: 0.9},
			{DOI: "10.1/bbb", Title: "Paper B", Authors: "Carol White", Published: "2022", Content: "b0", ChunkIndex: 0, SimilarityScore: 0.5},
		}

		grouper := newTestGrouper()
		first := grouper.Group(chunks)

		// Flatten the grouped references back into chunk hits and regroup.
		var flattened []ragserver.ChunkResult
		for _, ref := range first {
			for _, chunk := range ref.Chunks {
				flattened = append(flattened, ragserver.ChunkResult{
					DOI:             ref.PaperID,
					Title:           ref.Title,
					Authors:         joinAuthors(ref.Authors),
					Published:       ref.PublicationDate,
					Content:         chunk.Content,
					ChunkIndex:      chunk.Index,
					SimilarityScore: chunk.Score,
				})
			}
		}

		second := grouper.Group(flattened)
		assert.Equal(t, first, second)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		refs := newTestGrouper().Group(nil)
		assert.Empty(t, refs)
	})
}

func joinAuthors(authors []string) string {
	out := ""
	for i, a := range authors {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

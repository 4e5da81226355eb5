package repository

import (
	"context"

	"github.com/scholia/literature-search-service/internal/domain"
	"github.com/scholia/literature-search-service/internal/recommend"
)

// CitationRepository is read-only access to papers, authors, and citation
// edges. It extends the traversal queries the recommendation engine needs
// with the lookup queries behind the paper endpoints.
type CitationRepository interface {
	recommend.CitationGraphAccessor

	// GetPaperDetail returns a paper with its authors and citation-graph degree.
	GetPaperDetail(ctx context.Context, paperID string) (*domain.PaperDetail, error)

	// PaperAuthors returns a paper's authors in byline order.
	PaperAuthors(ctx context.Context, paperID string) ([]domain.Author, error)

	// PaperReferences returns the papers cited by paperID, most cited first.
	PaperReferences(ctx context.Context, paperID string, limit int) ([]domain.Paper, error)

	// PaperCitations returns the papers citing paperID, most cited first.
	PaperCitations(ctx context.Context, paperID string, limit int) ([]domain.Paper, error)

	// CitationNetwork returns the citation neighborhood of paperID up to the
	// given depth (1 or 2 hops).
	CitationNetwork(ctx context.Context, paperID string, depth int) (*domain.CitationNetwork, error)
}

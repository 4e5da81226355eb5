package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scholia/literature-search-service/internal/domain"
	"github.com/scholia/literature-search-service/internal/recommend"
)

// Compile-time interface verification.
var _ CitationRepository = (*PgCitationRepository)(nil)

// PgCitationRepository is a PostgreSQL implementation of CitationRepository.
type PgCitationRepository struct {
	db DBTX
}

// NewPgCitationRepository creates a new PostgreSQL citation repository.
func NewPgCitationRepository(db DBTX) *PgCitationRepository {
	return &PgCitationRepository{db: db}
}

// CitedBy returns the IDs of papers cited by paperID, i.e. its reference
// list. An unknown paper maps to domain.ErrNotFound.
func (r *PgCitationRepository) CitedBy(ctx context.Context, paperID string) ([]string, error) {
	if err := r.ensurePaperExists(ctx, paperID); err != nil {
		return nil, err
	}

	query := `
		SELECT cited_paper_id
		FROM citations
		WHERE citing_paper_id = $1
		ORDER BY cited_paper_id`

	return r.queryPaperIDs(ctx, query, paperID)
}

// Citing returns the IDs of papers that cite paperID.
func (r *PgCitationRepository) Citing(ctx context.Context, paperID string) ([]string, error) {
	if err := r.ensurePaperExists(ctx, paperID); err != nil {
		return nil, err
	}

	query := `
		SELECT citing_paper_id
		FROM citations
		WHERE cited_paper_id = $1
		ORDER BY citing_paper_id`

	return r.queryPaperIDs(ctx, query, paperID)
}

// PapersCitingAny returns papers that cite at least one member of paperIDs,
// excluding the given IDs, counted by distinct cited members. Ordered by
// count descending with paper ID as the stable tie-break.
func (r *PgCitationRepository) PapersCitingAny(ctx context.Context, paperIDs, exclude []string) ([]recommend.PaperCount, error) {
	query := `
		SELECT p.id, p.title, COALESCE(p.abstract, ''), COALESCE(p.publication_year, 0),
			p.citation_count, COUNT(DISTINCT c.cited_paper_id) AS shared
		FROM citations c
		JOIN papers p ON p.id = c.citing_paper_id
		WHERE c.cited_paper_id = ANY($1) AND NOT (p.id = ANY($2))
		GROUP BY p.id, p.title, p.abstract, p.publication_year, p.citation_count
		ORDER BY shared DESC, p.id`

	return r.queryPaperCounts(ctx, query, paperIDs, emptyIfNil(exclude))
}

// PapersCitedByAny returns papers cited by members of paperIDs, excluding the
// given IDs, counted by distinct citing members. Ordered by count descending
// with paper ID as the stable tie-break.
func (r *PgCitationRepository) PapersCitedByAny(ctx context.Context, paperIDs, exclude []string) ([]recommend.PaperCount, error) {
	query := `
		SELECT p.id, p.title, COALESCE(p.abstract, ''), COALESCE(p.publication_year, 0),
			p.citation_count, COUNT(DISTINCT c.citing_paper_id) AS shared
		FROM citations c
		JOIN papers p ON p.id = c.cited_paper_id
		WHERE c.citing_paper_id = ANY($1) AND NOT (p.id = ANY($2))
		GROUP BY p.id, p.title, p.abstract, p.publication_year, p.citation_count
		ORDER BY shared DESC, p.id`

	return r.queryPaperCounts(ctx, query, paperIDs, emptyIfNil(exclude))
}

// RecentCitingPapers is PapersCitingAny restricted to papers published in or
// after minYear. Papers without a known year are excluded.
func (r *PgCitationRepository) RecentCitingPapers(ctx context.Context, paperIDs, exclude []string, minYear int) ([]recommend.PaperCount, error) {
	query := `
		SELECT p.id, p.title, COALESCE(p.abstract, ''), COALESCE(p.publication_year, 0),
			p.citation_count, COUNT(DISTINCT c.cited_paper_id) AS shared
		FROM citations c
		JOIN papers p ON p.id = c.citing_paper_id
		WHERE c.cited_paper_id = ANY($1) AND NOT (p.id = ANY($2))
			AND p.publication_year >= $3
		GROUP BY p.id, p.title, p.abstract, p.publication_year, p.citation_count
		ORDER BY shared DESC, p.id`

	return r.queryPaperCounts(ctx, query, paperIDs, emptyIfNil(exclude), minYear)
}

// GetPaper returns a paper snapshot without its author list.
func (r *PgCitationRepository) GetPaper(ctx context.Context, paperID string) (*domain.Paper, error) {
	if paperID == "" {
		return nil, domain.NewValidationError("paper_id", "paper ID is required")
	}

	query := `
		SELECT id, title, COALESCE(abstract, ''), COALESCE(publication_year, 0), citation_count
		FROM papers
		WHERE id = $1`

	var paper domain.Paper
	err := r.db.QueryRow(ctx, query, paperID).Scan(
		&paper.ID,
		&paper.Title,
		&paper.Abstract,
		&paper.Year,
		&paper.CitationCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("paper", paperID)
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}

	return &paper, nil
}

// AuthorName returns the display name of an author.
func (r *PgCitationRepository) AuthorName(ctx context.Context, authorID string) (string, error) {
	if authorID == "" {
		return "", domain.NewValidationError("author_id", "author ID is required")
	}

	var name string
	err := r.db.QueryRow(ctx, `SELECT name FROM authors WHERE id = $1`, authorID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.NewNotFoundError("author", authorID)
		}
		return "", fmt.Errorf("failed to get author: %w", err)
	}

	return name, nil
}

// AuthorPapers returns the author's papers ordered by year descending, then
// citation count descending.
func (r *PgCitationRepository) AuthorPapers(ctx context.Context, authorID string, limit int) ([]domain.Paper, error) {
	query := `
		SELECT p.id, p.title, COALESCE(p.abstract, ''), COALESCE(p.publication_year, 0), p.citation_count
		FROM papers p
		JOIN paper_authors pa ON pa.paper_id = p.id
		WHERE pa.author_id = $1
		ORDER BY p.publication_year DESC NULLS LAST, p.citation_count DESC, p.id
		LIMIT $2`

	return r.queryPapers(ctx, query, authorID, clampLimit(limit))
}

// GetPaperDetail returns a paper with its authors and citation-graph degree.
func (r *PgCitationRepository) GetPaperDetail(ctx context.Context, paperID string) (*domain.PaperDetail, error) {
	if paperID == "" {
		return nil, domain.NewValidationError("paper_id", "paper ID is required")
	}

	query := `
		SELECT p.id, p.title, COALESCE(p.abstract, ''), COALESCE(p.publication_year, 0),
			p.citation_count,
			(SELECT COUNT(*) FROM citations WHERE citing_paper_id = p.id),
			(SELECT COUNT(*) FROM citations WHERE cited_paper_id = p.id)
		FROM papers p
		WHERE p.id = $1`

	var detail domain.PaperDetail
	err := r.db.QueryRow(ctx, query, paperID).Scan(
		&detail.ID,
		&detail.Title,
		&detail.Abstract,
		&detail.Year,
		&detail.CitationCount,
		&detail.ReferenceCount,
		&detail.CitedByCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("paper", paperID)
		}
		return nil, fmt.Errorf("failed to get paper detail: %w", err)
	}

	authors, err := r.PaperAuthors(ctx, paperID)
	if err != nil {
		return nil, err
	}
	detail.Authors = authors

	return &detail, nil
}

// PaperAuthors returns a paper's authors in byline order.
func (r *PgCitationRepository) PaperAuthors(ctx context.Context, paperID string) ([]domain.Author, error) {
	query := `
		SELECT a.id, a.name
		FROM authors a
		JOIN paper_authors pa ON pa.author_id = a.id
		WHERE pa.paper_id = $1
		ORDER BY pa.position`

	rows, err := r.db.Query(ctx, query, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to query paper authors: %w", err)
	}
	defer rows.Close()

	var authors []domain.Author
	for rows.Next() {
		var a domain.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate authors: %w", err)
	}

	return authors, nil
}

// PaperReferences returns the papers cited by paperID, most cited first.
func (r *PgCitationRepository) PaperReferences(ctx context.Context, paperID string, limit int) ([]domain.Paper, error) {
	if err := r.ensurePaperExists(ctx, paperID); err != nil {
		return nil, err
	}

	query := `
		SELECT p.id, p.title, COALESCE(p.abstract, ''), COALESCE(p.publication_year, 0), p.citation_count
		FROM citations c
		JOIN papers p ON p.id = c.cited_paper_id
		WHERE c.citing_paper_id = $1
		ORDER BY p.citation_count DESC, p.id
		LIMIT $2`

	return r.queryPapers(ctx, query, paperID, clampLimit(limit))
}

// PaperCitations returns the papers citing paperID, most cited first.
func (r *PgCitationRepository) PaperCitations(ctx context.Context, paperID string, limit int) ([]domain.Paper, error) {
	if err := r.ensurePaperExists(ctx, paperID); err != nil {
		return nil, err
	}

	query := `
		SELECT p.id, p.title, COALESCE(p.abstract, ''), COALESCE(p.publication_year, 0), p.citation_count
		FROM citations c
		JOIN papers p ON p.id = c.citing_paper_id
		WHERE c.cited_paper_id = $1
		ORDER BY p.citation_count DESC, p.id
		LIMIT $2`

	return r.queryPapers(ctx, query, paperID, clampLimit(limit))
}

// networkNeighborQuery returns, for a frontier of paper IDs, every citation
// edge touching the frontier together with the paper row on the far side.
const networkNeighborQuery = `
	SELECT c.citing_paper_id, c.cited_paper_id, COALESCE(c.relationship, ''), c.similarity,
		p.id, p.title, COALESCE(p.publication_year, 0), p.citation_count
	FROM citations c
	JOIN papers p ON p.id = CASE
		WHEN c.citing_paper_id = ANY($1) THEN c.cited_paper_id
		ELSE c.citing_paper_id
	END
	WHERE c.citing_paper_id = ANY($1) OR c.cited_paper_id = ANY($1)`

// CitationNetwork returns the citation neighborhood of paperID up to the
// given depth via breadth-first expansion, one query per hop.
func (r *PgCitationRepository) CitationNetwork(ctx context.Context, paperID string, depth int) (*domain.CitationNetwork, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > 2 {
		depth = 2
	}

	root, err := r.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}

	network := &domain.CitationNetwork{
		RootID: paperID,
		Nodes: []domain.NetworkNode{{
			PaperID:       root.ID,
			Title:         root.Title,
			Year:          root.Year,
			CitationCount: root.CitationCount,
			Depth:         0,
		}},
	}

	seenNodes := map[string]bool{paperID: true}
	seenEdges := map[string]bool{}
	frontier := []string{paperID}

	for d := 1; d <= depth && len(frontier) > 0; d++ {
		rows, err := r.db.Query(ctx, networkNeighborQuery, frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to query citation network: %w", err)
		}

		var next []string
		for rows.Next() {
			var edge domain.CitationEdge
			var node domain.NetworkNode
			if err := rows.Scan(
				&edge.CitingPaperID,
				&edge.CitedPaperID,
				&edge.Relationship,
				&edge.Similarity,
				&node.PaperID,
				&node.Title,
				&node.Year,
				&node.CitationCount,
			); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan network row: %w", err)
			}

			edgeKey := edge.CitingPaperID + "\x00" + edge.CitedPaperID
			if !seenEdges[edgeKey] {
				seenEdges[edgeKey] = true
				network.Edges = append(network.Edges, edge)
			}

			if !seenNodes[node.PaperID] {
				seenNodes[node.PaperID] = true
				node.Depth = d
				network.Nodes = append(network.Nodes, node)
				next = append(next, node.PaperID)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to iterate network rows: %w", err)
		}
		rows.Close()

		frontier = next
	}

	return network, nil
}

// ensurePaperExists maps an unknown paper ID to domain.ErrNotFound before a
// traversal query that would otherwise just return zero rows.
func (r *PgCitationRepository) ensurePaperExists(ctx context.Context, paperID string) error {
	if paperID == "" {
		return domain.NewValidationError("paper_id", "paper ID is required")
	}

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM papers WHERE id = $1)`, paperID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check paper existence: %w", err)
	}
	if !exists {
		return domain.NewNotFoundError("paper", paperID)
	}
	return nil
}

func (r *PgCitationRepository) queryPaperIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query paper IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan paper ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate paper IDs: %w", err)
	}

	return ids, nil
}

func (r *PgCitationRepository) queryPapers(ctx context.Context, query string, args ...interface{}) ([]domain.Paper, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %w", err)
	}
	defer rows.Close()

	var papers []domain.Paper
	for rows.Next() {
		var p domain.Paper
		if err := rows.Scan(&p.ID, &p.Title, &p.Abstract, &p.Year, &p.CitationCount); err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate papers: %w", err)
	}

	return papers, nil
}

func (r *PgCitationRepository) queryPaperCounts(ctx context.Context, query string, args ...interface{}) ([]recommend.PaperCount, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query paper counts: %w", err)
	}
	defer rows.Close()

	var counts []recommend.PaperCount
	for rows.Next() {
		var pc recommend.PaperCount
		if err := rows.Scan(
			&pc.Paper.ID,
			&pc.Paper.Title,
			&pc.Paper.Abstract,
			&pc.Paper.Year,
			&pc.Paper.CitationCount,
			&pc.Count,
		); err != nil {
			return nil, fmt.Errorf("failed to scan paper count: %w", err)
		}
		counts = append(counts, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate paper counts: %w", err)
	}

	return counts, nil
}

// emptyIfNil keeps ANY($2) well-typed when there is nothing to exclude.
func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/scholia/literature-search-service/internal/domain"
)

// CollectionRepository is read-only access to paper collections.
type CollectionRepository interface {
	// CollectionPaperIDs returns the member paper IDs of a collection in the
	// order they were added. An unknown collection maps to domain.ErrNotFound.
	CollectionPaperIDs(ctx context.Context, collectionID uuid.UUID) ([]string, error)

	// CollectionPapers returns the member papers of a collection in the order
	// they were added.
	CollectionPapers(ctx context.Context, collectionID uuid.UUID) ([]domain.Paper, error)

	// CollectionStats summarizes the papers in a collection.
	CollectionStats(ctx context.Context, collectionID uuid.UUID) (*domain.CollectionStats, error)
}

// Compile-time interface verification.
var _ CollectionRepository = (*PgCollectionRepository)(nil)

// PgCollectionRepository is a PostgreSQL implementation of CollectionRepository.
type PgCollectionRepository struct {
	db DBTX
}

// NewPgCollectionRepository creates a new PostgreSQL collection repository.
func NewPgCollectionRepository(db DBTX) *PgCollectionRepository {
	return &PgCollectionRepository{db: db}
}

// CollectionPaperIDs returns the member paper IDs of a collection in the
// order they were added.
func (r *PgCollectionRepository) CollectionPaperIDs(ctx context.Context, collectionID uuid.UUID) ([]string, error) {
	if err := r.ensureCollectionExists(ctx, collectionID); err != nil {
		return nil, err
	}

	query := `
		SELECT paper_id
		FROM collection_papers
		WHERE collection_id = $1
		ORDER BY added_at, paper_id`

	rows, err := r.db.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection papers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan collection paper ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collection paper IDs: %w", err)
	}

	return ids, nil
}

// CollectionPapers returns the member papers of a collection in the order
// they were added.
func (r *PgCollectionRepository) CollectionPapers(ctx context.Context, collectionID uuid.UUID) ([]domain.Paper, error) {
	if err := r.ensureCollectionExists(ctx, collectionID); err != nil {
		return nil, err
	}

	query := `
		SELECT p.id, p.title, COALESCE(p.abstract, ''), COALESCE(p.publication_year, 0), p.citation_count
		FROM collection_papers cp
		JOIN papers p ON p.id = cp.paper_id
		WHERE cp.collection_id = $1
		ORDER BY cp.added_at, p.id`

	rows, err := r.db.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection papers: %w", err)
	}
	defer rows.Close()

	var papers []domain.Paper
	for rows.Next() {
		var p domain.Paper
		if err := rows.Scan(&p.ID, &p.Title, &p.Abstract, &p.Year, &p.CitationCount); err != nil {
			return nil, fmt.Errorf("failed to scan collection paper: %w", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collection papers: %w", err)
	}

	return papers, nil
}

// CollectionStats summarizes the papers in a collection. Papers without a
// known publication year are excluded from the year range.
func (r *PgCollectionRepository) CollectionStats(ctx context.Context, collectionID uuid.UUID) (*domain.CollectionStats, error) {
	if err := r.ensureCollectionExists(ctx, collectionID); err != nil {
		return nil, err
	}

	query := `
		SELECT COUNT(p.id), COALESCE(SUM(p.citation_count), 0),
			COALESCE(MIN(p.publication_year), 0), COALESCE(MAX(p.publication_year), 0)
		FROM collection_papers cp
		JOIN papers p ON p.id = cp.paper_id
		WHERE cp.collection_id = $1`

	stats := &domain.CollectionStats{CollectionID: collectionID.String()}
	err := r.db.QueryRow(ctx, query, collectionID).Scan(
		&stats.PaperCount,
		&stats.TotalCitations,
		&stats.MinYear,
		&stats.MaxYear,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection stats: %w", err)
	}

	if stats.PaperCount > 0 {
		stats.AvgCitations = float64(stats.TotalCitations) / float64(stats.PaperCount)
	}

	return stats, nil
}

// ensureCollectionExists maps an unknown collection ID to domain.ErrNotFound.
func (r *PgCollectionRepository) ensureCollectionExists(ctx context.Context, collectionID uuid.UUID) error {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM collections WHERE id = $1)`, collectionID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError("collection", collectionID.String())
		}
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return domain.NewNotFoundError("collection", collectionID.String())
	}
	return nil
}

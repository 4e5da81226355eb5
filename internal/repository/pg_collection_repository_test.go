package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholia/literature-search-service/internal/domain"
)

func newCollectionMock(t *testing.T) (pgxmock.PgxPoolIface, *PgCollectionRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPgCollectionRepository(mock)
}

func expectCollectionExists(mock pgxmock.PgxPoolIface, id uuid.UUID, exists bool) {
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(exists))
}

func TestPgCollectionRepository_CollectionPaperIDs(t *testing.T) {
	ctx := context.Background()
	collectionID := uuid.New()

	t.Run("returns member IDs in added order", func(t *testing.T) {
		mock, repo := newCollectionMock(t)

		expectCollectionExists(mock, collectionID, true)
		mock.ExpectQuery("SELECT paper_id").
			WithArgs(collectionID).
			WillReturnRows(pgxmock.NewRows([]string{"paper_id"}).
				AddRow("p1").
				AddRow("p2"))

		ids, err := repo.CollectionPaperIDs(ctx, collectionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2"}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown collection maps to not found", func(t *testing.T) {
		mock, repo := newCollectionMock(t)

		expectCollectionExists(mock, collectionID, false)

		_, err := repo.CollectionPaperIDs(ctx, collectionID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPgCollectionRepository_CollectionStats(t *testing.T) {
	ctx := context.Background()
	collectionID := uuid.New()

	t.Run("computes average citations", func(t *testing.T) {
		mock, repo := newCollectionMock(t)

		expectCollectionExists(mock, collectionID, true)
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(collectionID).
			WillReturnRows(pgxmock.NewRows([]string{"count", "total", "min_year", "max_year"}).
				AddRow(4, 18, 2019, 2024))

		stats, err := repo.CollectionStats(ctx, collectionID)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.PaperCount)
		assert.Equal(t, 18, stats.TotalCitations)
		assert.Equal(t, 4.5, stats.AvgCitations)
		assert.Equal(t, 2019, stats.MinYear)
		assert.Equal(t, 2024, stats.MaxYear)
	})

	t.Run("empty collection yields zero average", func(t *testing.T) {
		mock, repo := newCollectionMock(t)

		expectCollectionExists(mock, collectionID, true)
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(collectionID).
			WillReturnRows(pgxmock.NewRows([]string{"count", "total", "min_year", "max_year"}).
				AddRow(0, 0, 0, 0))

		stats, err := repo.CollectionStats(ctx, collectionID)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.PaperCount)
		assert.Equal(t, 0.0, stats.AvgCitations)
	})
}

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholia/literature-search-service/internal/domain"
)

func newCitationMock(t *testing.T) (pgxmock.PgxPoolIface, *PgCitationRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPgCitationRepository(mock)
}

func expectPaperExists(mock pgxmock.PgxPoolIface, paperID string, exists bool) {
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(paperID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(exists))
}

func TestPgCitationRepository_CitedBy(t *testing.T) {
	ctx := context.Background()

	t.Run("returns reference list in stable order", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		expectPaperExists(mock, "target", true)
		mock.ExpectQuery("SELECT cited_paper_id").
			WithArgs("target").
			WillReturnRows(pgxmock.NewRows([]string{"cited_paper_id"}).
				AddRow("A").
				AddRow("B"))

		ids, err := repo.CitedBy(ctx, "target")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown paper maps to not found", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		expectPaperExists(mock, "ghost", false)

		_, err := repo.CitedBy(ctx, "ghost")
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty paper id is a validation error", func(t *testing.T) {
		_, repo := newCitationMock(t)

		_, err := repo.CitedBy(ctx, "")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestPgCitationRepository_PapersCitingAny(t *testing.T) {
	ctx := context.Background()

	t.Run("returns counted papers in count order", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		mock.ExpectQuery("SELECT p.id, p.title").
			WithArgs([]string{"A", "B"}, []string{"target"}).
			WillReturnRows(pgxmock.NewRows([]string{"id", "title", "abstract", "publication_year", "citation_count", "shared"}).
				AddRow("Y", "Paper Y", "", 2023, 40, 2).
				AddRow("X", "Paper X", "", 2021, 15, 1))

		counts, err := repo.PapersCitingAny(ctx, []string{"A", "B"}, []string{"target"})
		require.NoError(t, err)
		require.Len(t, counts, 2)
		assert.Equal(t, "Y", counts[0].Paper.ID)
		assert.Equal(t, 2, counts[0].Count)
		assert.Equal(t, 2023, counts[0].Paper.Year)
		assert.Equal(t, "X", counts[1].Paper.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil exclusion set is passed as empty array", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		mock.ExpectQuery("SELECT p.id, p.title").
			WithArgs([]string{"A"}, []string{}).
			WillReturnRows(pgxmock.NewRows([]string{"id", "title", "abstract", "publication_year", "citation_count", "shared"}))

		counts, err := repo.PapersCitingAny(ctx, []string{"A"}, nil)
		require.NoError(t, err)
		assert.Empty(t, counts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		mock.ExpectQuery("SELECT p.id, p.title").
			WithArgs([]string{"A"}, []string{}).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.PapersCitingAny(ctx, []string{"A"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query paper counts")
	})
}

func TestPgCitationRepository_RecentCitingPapers(t *testing.T) {
	ctx := context.Background()

	mock, repo := newCitationMock(t)

	mock.ExpectQuery("publication_year >=").
		WithArgs([]string{"A"}, []string{"target"}, 2019).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "abstract", "publication_year", "citation_count", "shared"}).
			AddRow("N", "New Paper", "", 2023, 4, 1))

	counts, err := repo.RecentCitingPapers(ctx, []string{"A"}, []string{"target"}, 2019)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, "N", counts[0].Paper.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCitationRepository_GetPaper(t *testing.T) {
	ctx := context.Background()

	t.Run("returns paper snapshot", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		mock.ExpectQuery("SELECT id, title").
			WithArgs("p1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "title", "abstract", "publication_year", "citation_count"}).
				AddRow("p1", "A Paper", "An abstract.", 2022, 7))

		paper, err := repo.GetPaper(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "A Paper", paper.Title)
		assert.Equal(t, 2022, paper.Year)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		mock.ExpectQuery("SELECT id, title").
			WithArgs("ghost").
			WillReturnRows(pgxmock.NewRows([]string{"id", "title", "abstract", "publication_year", "citation_count"}))

		_, err := repo.GetPaper(ctx, "ghost")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPgCitationRepository_GetPaperDetail(t *testing.T) {
	ctx := context.Background()

	mock, repo := newCitationMock(t)

	mock.ExpectQuery("SELECT p.id, p.title").
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "abstract", "publication_year", "citation_count", "refs", "cited_by"}).
			AddRow("p1", "A Paper", "", 2022, 7, 12, 3))
	mock.ExpectQuery("SELECT a.id, a.name").
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow("a1", "Alice Smith").
			AddRow("a2", "Bob Jones"))

	detail, err := repo.GetPaperDetail(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 12, detail.ReferenceCount)
	assert.Equal(t, 3, detail.CitedByCount)
	require.Len(t, detail.Authors, 2)
	assert.Equal(t, "Alice Smith", detail.Authors[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCitationRepository_AuthorName(t *testing.T) {
	ctx := context.Background()

	t.Run("returns name", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		mock.ExpectQuery("SELECT name FROM authors").
			WithArgs("a1").
			WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Alice Smith"))

		name, err := repo.AuthorName(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Alice Smith", name)
	})

	t.Run("unknown author maps to not found", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		mock.ExpectQuery("SELECT name FROM authors").
			WithArgs("ghost").
			WillReturnRows(pgxmock.NewRows([]string{"name"}))

		_, err := repo.AuthorName(ctx, "ghost")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPgCitationRepository_CitationNetwork(t *testing.T) {
	ctx := context.Background()

	t.Run("depth one expansion collects neighbors and edges", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		mock.ExpectQuery("SELECT id, title").
			WithArgs("root").
			WillReturnRows(pgxmock.NewRows([]string{"id", "title", "abstract", "publication_year", "citation_count"}).
				AddRow("root", "Root Paper", "", 2024, 9))

		mock.ExpectQuery("FROM citations c").
			WithArgs([]string{"root"}).
			WillReturnRows(pgxmock.NewRows([]string{"citing", "cited", "relationship", "similarity", "id", "title", "publication_year", "citation_count"}).
				AddRow("root", "A", "", nil, "A", "Paper A", 2020, 100).
				AddRow("B", "root", "extends", nil, "B", "Paper B", 2025, 2))

		network, err := repo.CitationNetwork(ctx, "root", 1)
		require.NoError(t, err)

		require.Len(t, network.Nodes, 3)
		assert.Equal(t, "root", network.Nodes[0].PaperID)
		assert.Equal(t, 0, network.Nodes[0].Depth)
		assert.Equal(t, 1, network.Nodes[1].Depth)

		require.Len(t, network.Edges, 2)
		assert.Equal(t, "root", network.Edges[0].CitingPaperID)
		assert.Equal(t, "A", network.Edges[0].CitedPaperID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing root maps to not found", func(t *testing.T) {
		mock, repo := newCitationMock(t)

		mock.ExpectQuery("SELECT id, title").
			WithArgs("ghost").
			WillReturnRows(pgxmock.NewRows([]string{"id", "title", "abstract", "publication_year", "citation_count"}))

		_, err := repo.CitationNetwork(ctx, "ghost", 1)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

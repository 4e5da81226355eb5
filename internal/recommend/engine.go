// Package recommend implements citation-graph recommendation algorithms:
// co-citation, bibliographic coupling, collection-based, author-based, and
// recency-biased ranking over a read-only citation graph store.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/scholia/literature-search-service/internal/domain"
	"github.com/scholia/literature-search-service/internal/observability"
)

// DefaultLimit is the recommendation list size when the caller omits a limit.
const DefaultLimit = 10

// authorBasedScore is the fixed score for author-based recommendations.
// Relatedness by shared author is definitional, not graph-derived.
const authorBasedScore = 0.9

// PaperCount pairs a paper with how many of the probe papers connect to it.
type PaperCount struct {
	Paper domain.Paper
	Count int
}

// CitationGraphAccessor is read-only access to the citation graph and the
// paper/author records behind it. Implementations return results in a stable
// order; the engine preserves that order for equal scores.
type CitationGraphAccessor interface {
	// CitedBy returns the IDs of papers that paperID cites (its reference list).
	CitedBy(ctx context.Context, paperID string) ([]string, error)

	// Citing returns the IDs of papers that cite paperID.
	Citing(ctx context.Context, paperID string) ([]string, error)

	// PapersCitingAny returns papers citing at least one member of paperIDs,
	// excluding the given IDs, counted by distinct cited members and ordered
	// by count descending.
	PapersCitingAny(ctx context.Context, paperIDs, exclude []string) ([]PaperCount, error)

	// PapersCitedByAny returns papers cited by members of paperIDs, excluding
	// the given IDs, counted by distinct citing members and ordered by count
	// descending.
	PapersCitedByAny(ctx context.Context, paperIDs, exclude []string) ([]PaperCount, error)

	// RecentCitingPapers is PapersCitingAny restricted to papers published in
	// or after minYear.
	RecentCitingPapers(ctx context.Context, paperIDs, exclude []string, minYear int) ([]PaperCount, error)

	// GetPaper returns a paper by ID, or an error wrapping domain.ErrNotFound.
	GetPaper(ctx context.Context, paperID string) (*domain.Paper, error)

	// AuthorName returns the display name of an author, or an error wrapping
	// domain.ErrNotFound.
	AuthorName(ctx context.Context, authorID string) (string, error)

	// AuthorPapers returns the author's papers ordered by year descending,
	// then citation count descending.
	AuthorPapers(ctx context.Context, authorID string, limit int) ([]domain.Paper, error)
}

// Engine produces ranked, scored, reasoned recommendations from the citation
// graph. All operations are read-only; empty graph neighborhoods and missing
// target papers yield empty results, never errors.
type Engine struct {
	graph  CitationGraphAccessor
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine over the given graph accessor.
func NewEngine(graph CitationGraphAccessor, logger zerolog.Logger) *Engine {
	return &Engine{graph: graph, logger: logger}
}

// CoCitation recommends papers that cite the same references as paperID.
// With R the target's reference list, each candidate's score is the fraction
// of R it cites. A paper with no outgoing citations yields an empty list.
func (e *Engine) CoCitation(ctx context.Context, paperID string, limit int) ([]domain.Recommendation, error) {
	refs, err := e.graph.CitedBy(ctx, paperID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Recommendation{}, nil
		}
		return nil, fmt.Errorf("fetching references of %s: %w", paperID, err)
	}
	if len(refs) == 0 {
		return []domain.Recommendation{}, nil
	}

	counts, err := e.graph.PapersCitingAny(ctx, refs, []string{paperID})
	if err != nil {
		return nil, fmt.Errorf("finding co-citing papers of %s: %w", paperID, err)
	}

	paperLogger := observability.WithPaperContext(e.logger, paperID)
	paperLogger.Debug().
		Int("references", len(refs)).
		Int("candidates", len(counts)).
		Msg("co-citation candidates ranked")

	recs := make([]domain.Recommendation, 0, len(counts))
	for _, pc := range counts {
		recs = append(recs, domain.Recommendation{
			Paper:  clonePaper(pc.Paper),
			Score:  float64(pc.Count) / float64(len(refs)),
			Reason: fmt.Sprintf("Shares %d references with the selected paper", pc.Count),
		})
	}

	return rank(recs, limit), nil
}

// BibliographicCoupling recommends papers cited by the papers that cite
// paperID. With C the target's citer set, each candidate's score is the
// fraction of C citing it. A paper nobody cites yields an empty list.
func (e *Engine) BibliographicCoupling(ctx context.Context, paperID string, limit int) ([]domain.Recommendation, error) {
	citers, err := e.graph.Citing(ctx, paperID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Recommendation{}, nil
		}
		return nil, fmt.Errorf("fetching citers of %s: %w", paperID, err)
	}
	if len(citers) == 0 {
		return []domain.Recommendation{}, nil
	}

	counts, err := e.graph.PapersCitedByAny(ctx, citers, []string{paperID})
	if err != nil {
		return nil, fmt.Errorf("finding coupled papers of %s: %w", paperID, err)
	}

	recs := make([]domain.Recommendation, 0, len(counts))
	for _, pc := range counts {
		recs = append(recs, domain.Recommendation{
			Paper:  clonePaper(pc.Paper),
			Score:  float64(pc.Count) / float64(len(citers)),
			Reason: fmt.Sprintf("Cited by %d papers that also cite the selected paper", pc.Count),
		})
	}

	return rank(recs, limit), nil
}

// CollectionBased recommends papers cited by members of the collection but
// not themselves in it, scored by the fraction of the collection citing them.
// An empty collection yields an empty list without any traversal.
func (e *Engine) CollectionBased(ctx context.Context, paperIDs []string, limit int) ([]domain.Recommendation, error) {
	if len(paperIDs) == 0 {
		return []domain.Recommendation{}, nil
	}

	counts, err := e.graph.PapersCitedByAny(ctx, paperIDs, paperIDs)
	if err != nil {
		return nil, fmt.Errorf("finding papers cited by collection: %w", err)
	}

	recs := make([]domain.Recommendation, 0, len(counts))
	for _, pc := range counts {
		recs = append(recs, domain.Recommendation{
			Paper:  clonePaper(pc.Paper),
			Score:  float64(pc.Count) / float64(len(paperIDs)),
			Reason: fmt.Sprintf("Cited by %d papers in your collection", pc.Count),
		})
	}

	return rank(recs, limit), nil
}

// AuthorBased recommends the author's own papers, ordered by year then
// citation count, with a fixed score. An unknown author yields an empty list.
func (e *Engine) AuthorBased(ctx context.Context, authorID string, limit int) ([]domain.Recommendation, error) {
	name, err := e.graph.AuthorName(ctx, authorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Recommendation{}, nil
		}
		return nil, fmt.Errorf("fetching author %s: %w", authorID, err)
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	papers, err := e.graph.AuthorPapers(ctx, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching papers of author %s: %w", authorID, err)
	}

	recs := make([]domain.Recommendation, 0, len(papers))
	for _, paper := range papers {
		recs = append(recs, domain.Recommendation{
			Paper:  clonePaper(paper),
			Score:  authorBasedScore,
			Reason: fmt.Sprintf("By the same author: %s", name),
		})
	}

	return recs, nil
}

// RecencyBiased restricts co-citation traversal to papers published within
// the given number of years of the target's own year. The score decays
// linearly with year distance and is clamped to 0; candidates newer than the
// target score 1.
func (e *Engine) RecencyBiased(ctx context.Context, paperID string, years, limit int) ([]domain.Recommendation, error) {
	if years <= 0 {
		return nil, domain.NewValidationError("years", "must be a positive integer")
	}

	logger := observability.WithPaperContext(e.logger, paperID)

	target, err := e.graph.GetPaper(ctx, paperID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Recommendation{}, nil
		}
		return nil, fmt.Errorf("fetching paper %s: %w", paperID, err)
	}
	if target.Year == 0 {
		logger.Debug().Msg("target paper has no publication year")
		return []domain.Recommendation{}, nil
	}

	refs, err := e.graph.CitedBy(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("fetching references of %s: %w", paperID, err)
	}
	if len(refs) == 0 {
		return []domain.Recommendation{}, nil
	}

	counts, err := e.graph.RecentCitingPapers(ctx, refs, []string{paperID}, target.Year-years)
	if err != nil {
		return nil, fmt.Errorf("finding recent citing papers of %s: %w", paperID, err)
	}

	recs := make([]domain.Recommendation, 0, len(counts))
	for _, pc := range counts {
		if pc.Paper.Year == 0 {
			continue
		}
		gap := target.Year - pc.Paper.Year
		if gap < 0 {
			gap = 0
		}
		score := 1 - float64(gap)/float64(years)
		if score < 0 {
			score = 0
		}
		recs = append(recs, domain.Recommendation{
			Paper:  clonePaper(pc.Paper),
			Score:  score,
			Reason: fmt.Sprintf("Recent paper (%d) citing related work", pc.Paper.Year),
		})
	}

	return rank(recs, limit), nil
}

// rank sorts recommendations by score descending, keeping the accessor's
// order for equal scores, and truncates to limit.
func rank(recs []domain.Recommendation, limit int) []domain.Recommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

func clonePaper(p domain.Paper) *domain.Paper {
	c := p
	return &c
}

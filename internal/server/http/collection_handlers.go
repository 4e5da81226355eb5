package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// getCollectionPapers handles GET /collections/{collectionID}/papers.
// It returns the member papers of the collection in the order they were added.
func (s *Server) getCollectionPapers(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := parseUUID(w, chi.URLParam(r, "collectionID"), "collection_id")
	if !ok {
		return
	}

	papers, err := s.collections.CollectionPapers(r.Context(), collectionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainPapersToList(papers))
}

// getCollectionRecommendations handles GET /collections/{collectionID}/recommendations.
// It recommends papers cited by the collection members but not in the
// collection itself.
func (s *Server) getCollectionRecommendations(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := parseUUID(w, chi.URLParam(r, "collectionID"), "collection_id")
	if !ok {
		return
	}
	limit, ok := parseLimitParam(w, r)
	if !ok {
		return
	}

	paperIDs, err := s.collections.CollectionPaperIDs(r.Context(), collectionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	start := time.Now()
	recs, err := s.recommender.CollectionBased(r.Context(), paperIDs, limit)
	if err != nil {
		s.metrics.RecordRecommendationFailed(algorithmCollection)
		writeDomainError(w, err)
		return
	}

	s.metrics.RecordRecommendationServed(algorithmCollection, time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, recommendationsToResponse(recs))
}

// getCollectionStats handles GET /collections/{collectionID}/stats.
func (s *Server) getCollectionStats(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := parseUUID(w, chi.URLParam(r, "collectionID"), "collection_id")
	if !ok {
		return
	}

	stats, err := s.collections.CollectionStats(r.Context(), collectionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainStatsToResponse(stats))
}

// getAuthorRecommendations handles GET /authors/{authorID}/recommendations.
// It returns the author's own papers with a fixed relatedness score.
func (s *Server) getAuthorRecommendations(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, "authorID")
	limit, ok := parseLimitParam(w, r)
	if !ok {
		return
	}

	start := time.Now()
	recs, err := s.recommender.AuthorBased(r.Context(), authorID, limit)
	if err != nil {
		s.metrics.RecordRecommendationFailed(algorithmAuthor)
		writeDomainError(w, err)
		return
	}

	s.metrics.RecordRecommendationServed(algorithmAuthor, time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, recommendationsToResponse(recs))
}

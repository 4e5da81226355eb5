package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scholia/literature-search-service/internal/domain"
)

// Recommendation algorithm names accepted by the similar-papers endpoint.
const (
	algorithmCoCitation = "co_citation"
	algorithmCoupling   = "bibliographic_coupling"
	algorithmCollection = "collection"
	algorithmAuthor     = "author"
	algorithmRecency    = "recency"
)

// getPaper handles GET /papers/{paperID}.
// It returns the paper with its authors and citation-graph degree.
func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")

	detail, err := s.citations.GetPaperDetail(r.Context(), paperID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainPaperDetailToResponse(detail))
}

// getPaperReferences handles GET /papers/{paperID}/references.
// It returns the papers cited by the paper, most cited first.
func (s *Server) getPaperReferences(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")
	limit, ok := parseLimitParam(w, r)
	if !ok {
		return
	}

	papers, err := s.citations.PaperReferences(r.Context(), paperID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainPapersToList(papers))
}

// getPaperCitations handles GET /papers/{paperID}/citations.
// It returns the papers citing the paper, most cited first.
func (s *Server) getPaperCitations(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")
	limit, ok := parseLimitParam(w, r)
	if !ok {
		return
	}

	papers, err := s.citations.PaperCitations(r.Context(), paperID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainPapersToList(papers))
}

// getCitationNetwork handles GET /papers/{paperID}/network.
// It returns the citation neighborhood of the paper up to the requested depth.
func (s *Server) getCitationNetwork(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")

	depth := 1
	if depthStr := r.URL.Query().Get("depth"); depthStr != "" {
		parsed, err := strconv.Atoi(depthStr)
		if err != nil || parsed < 1 || parsed > 2 {
			writeError(w, http.StatusBadRequest, "depth must be 1 or 2")
			return
		}
		depth = parsed
	}

	network, err := s.citations.CitationNetwork(r.Context(), paperID, depth)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainNetworkToResponse(network))
}

// getSimilarPapers handles GET /papers/{paperID}/similar.
// The algorithm query parameter selects between co-citation (default) and
// bibliographic coupling.
func (s *Server) getSimilarPapers(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")
	limit, ok := parseLimitParam(w, r)
	if !ok {
		return
	}

	algorithm := r.URL.Query().Get("algorithm")
	if algorithm == "" {
		algorithm = algorithmCoCitation
	}

	var (
		recs []domain.Recommendation
		err  error
	)
	start := time.Now()
	switch algorithm {
	case algorithmCoCitation:
		recs, err = s.recommender.CoCitation(r.Context(), paperID, limit)
	case algorithmCoupling:
		recs, err = s.recommender.BibliographicCoupling(r.Context(), paperID, limit)
	default:
		writeError(w, http.StatusBadRequest, "algorithm must be co_citation or bibliographic_coupling")
		return
	}
	if err != nil {
		s.metrics.RecordRecommendationFailed(algorithm)
		writeDomainError(w, err)
		return
	}

	s.metrics.RecordRecommendationServed(algorithm, time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, recommendationsToResponse(recs))
}

// getRecentPapers handles GET /papers/{paperID}/recent.
// It returns recency-biased recommendations within the requested window.
func (s *Server) getRecentPapers(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")
	limit, ok := parseLimitParam(w, r)
	if !ok {
		return
	}

	years := defaultRecencyYears
	if yearsStr := r.URL.Query().Get("years"); yearsStr != "" {
		parsed, err := strconv.Atoi(yearsStr)
		if err != nil || parsed < 1 || parsed > maxRecencyYears {
			writeError(w, http.StatusBadRequest, "years must be a positive integer")
			return
		}
		years = parsed
	}

	start := time.Now()
	recs, err := s.recommender.RecencyBiased(r.Context(), paperID, years, limit)
	if err != nil {
		s.metrics.RecordRecommendationFailed(algorithmRecency)
		writeDomainError(w, err)
		return
	}

	s.metrics.RecordRecommendationServed(algorithmRecency, time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, recommendationsToResponse(recs))
}

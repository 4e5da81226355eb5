package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// searchRequest is the JSON request body for both search flows. The
// similarity threshold only applies to the internal flow.
type searchRequest struct {
	QueryText           string  `json:"query_text" validate:"required"`
	Limit               int     `json:"limit" validate:"omitempty,min=1,max=100"`
	SimilarityThreshold float64 `json:"similarity_threshold" validate:"omitempty,gt=0,lte=1"`
}

// decodeSearchRequest parses and validates the search request body. It writes
// the error response itself and reports success through the bool.
func (s *Server) decodeSearchRequest(w http.ResponseWriter, r *http.Request) (searchRequest, bool) {
	var req searchRequest

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return req, false
	}

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, validationMessage(verrs[0]))
			return req, false
		}
		writeError(w, http.StatusBadRequest, "invalid request")
		return req, false
	}

	return req, true
}

// searchInternal handles POST /api/v1/search/internal.
// It queries the internal vector store, groups chunks into references, builds
// the similarity graph, and synthesizes an answer.
func (s *Server) searchInternal(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	s.metrics.RecordSearchStarted("internal")

	result, err := s.searcher.SearchInternal(r.Context(), req.QueryText, req.Limit, req.SimilarityThreshold)
	if err != nil {
		s.metrics.RecordSearchFailed("internal", time.Since(start).Seconds())
		s.logger.Error().Err(err).Msg("internal search failed")
		writeDomainError(w, err)
		return
	}

	s.metrics.RecordSearchCompleted("internal", len(result.References), len(result.SimilarityGraph), time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, internalResultToResponse(result))
}

// searchExternal handles POST /api/v1/search/external.
// It expands the query, fetches papers from the bibliographic provider, and
// synthesizes an answer over per-paper context blocks.
func (s *Server) searchExternal(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	s.metrics.RecordSearchStarted("external")

	result, err := s.searcher.SearchExternal(r.Context(), req.QueryText, req.Limit)
	if err != nil {
		s.metrics.RecordSearchFailed("external", time.Since(start).Seconds())
		s.logger.Error().Err(err).Msg("external search failed")
		writeDomainError(w, err)
		return
	}

	s.metrics.RecordSearchCompleted("external", len(result.References), len(result.SimilarityGraph), time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, externalResultToResponse(result))
}

// validationMessage renders a field error from the request validator without
// exposing struct internals.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "gt":
		return fe.Field() + " is too small"
	case "max", "lte":
		return fe.Field() + " is too large"
	default:
		return fe.Field() + " is invalid"
	}
}

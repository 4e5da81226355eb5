package httpserver

import (
	"github.com/scholia/literature-search-service/internal/domain"
	"github.com/scholia/literature-search-service/internal/search"
)

// Search response types for JSON serialization. Field names are part of the
// public API contract and must not change.

type internalSearchResponse struct {
	Query           string                   `json:"query"`
	Answer          string                   `json:"answer"`
	References      []referenceResponse      `json:"references"`
	SimilarityGraph []similarityLinkResponse `json:"similarity_graph"`
}

type externalSearchResponse struct {
	Query           string                      `json:"query"`
	Answer          string                      `json:"answer"`
	References      []externalReferenceResponse `json:"references"`
	SimilarityGraph []similarityLinkResponse    `json:"similarity_graph"`
}

type referenceResponse struct {
	PaperID         string          `json:"paper_id"`
	Title           string          `json:"title"`
	Authors         []string        `json:"authors"`
	PublicationDate string          `json:"publication_date"`
	Chunks          []chunkResponse `json:"chunks"`
}

type chunkResponse struct {
	Content string  `json:"chunk_content"`
	Index   int     `json:"chunk_index"`
	Score   float64 `json:"similarity_score"`
}

type externalReferenceResponse struct {
	PaperID         string   `json:"paper_id"`
	Title           string   `json:"title"`
	URL             string   `json:"url,omitempty"`
	Authors         []string `json:"authors"`
	PublicationDate string   `json:"publication_date,omitempty"`
	TLDR            string   `json:"tldr,omitempty"`
	CitationCount   int      `json:"citation_count"`
	Venue           string   `json:"venue,omitempty"`
	FieldsOfStudy   []string `json:"fields_of_study,omitempty"`
}

type similarityLinkResponse struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Similarity float64 `json:"similarity"`
}

// Paper and recommendation response types.

type paperResponse struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Abstract      string           `json:"abstract,omitempty"`
	Year          int              `json:"publication_year,omitempty"`
	CitationCount int              `json:"citation_count"`
	Authors       []authorResponse `json:"authors,omitempty"`
}

type authorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type paperDetailResponse struct {
	paperResponse
	ReferenceCount int `json:"reference_count"`
	CitedByCount   int `json:"cited_by_count"`
}

type listPapersResponse struct {
	Papers     []paperResponse `json:"papers"`
	TotalCount int             `json:"total_count"`
}

type recommendationResponse struct {
	Paper  paperResponse `json:"paper"`
	Score  float64       `json:"score"`
	Reason string        `json:"reason"`
}

type listRecommendationsResponse struct {
	Recommendations []recommendationResponse `json:"recommendations"`
	TotalCount      int                      `json:"total_count"`
}

type networkNodeResponse struct {
	PaperID       string `json:"paper_id"`
	Title         string `json:"title"`
	Year          int    `json:"publication_year,omitempty"`
	CitationCount int    `json:"citation_count"`
	Depth         int    `json:"depth"`
}

type networkEdgeResponse struct {
	CitingPaperID string   `json:"citing_paper_id"`
	CitedPaperID  string   `json:"cited_paper_id"`
	Relationship  string   `json:"relationship,omitempty"`
	Similarity    *float64 `json:"similarity,omitempty"`
}

type citationNetworkResponse struct {
	RootID string                `json:"root_id"`
	Nodes  []networkNodeResponse `json:"nodes"`
	Edges  []networkEdgeResponse `json:"edges"`
}

type collectionStatsResponse struct {
	CollectionID   string  `json:"collection_id"`
	PaperCount     int     `json:"paper_count"`
	TotalCitations int     `json:"total_citations"`
	AvgCitations   float64 `json:"avg_citations"`
	MinYear        int     `json:"min_year,omitempty"`
	MaxYear        int     `json:"max_year,omitempty"`
}

// Converter functions

func internalResultToResponse(res *search.InternalResult) internalSearchResponse {
	references := make([]referenceResponse, len(res.References))
	for i, ref := range res.References {
		references[i] = domainReferenceToResponse(ref)
	}
	return internalSearchResponse{
		Query:           res.Query,
		Answer:          res.Answer,
		References:      references,
		SimilarityGraph: linksToResponse(res.SimilarityGraph),
	}
}

func externalResultToResponse(res *search.ExternalResult) externalSearchResponse {
	references := make([]externalReferenceResponse, len(res.References))
	for i, ref := range res.References {
		references[i] = externalReferenceResponse{
			PaperID:         ref.PaperID,
			Title:           ref.Title,
			URL:             ref.URL,
			Authors:         ref.Authors,
			PublicationDate: ref.PublicationDate,
			TLDR:            ref.TLDR,
			CitationCount:   ref.CitationCount,
			Venue:           ref.Venue,
			FieldsOfStudy:   ref.FieldsOfStudy,
		}
	}
	return externalSearchResponse{
		Query:           res.Query,
		Answer:          res.Answer,
		References:      references,
		SimilarityGraph: linksToResponse(res.SimilarityGraph),
	}
}

func domainReferenceToResponse(ref domain.Reference) referenceResponse {
	chunks := make([]chunkResponse, len(ref.Chunks))
	for i, chunk := range ref.Chunks {
		chunks[i] = chunkResponse{
			Content: chunk.Content,
			Index:   chunk.Index,
			Score:   chunk.Score,
		}
	}
	return referenceResponse{
		PaperID:         ref.PaperID,
		Title:           ref.Title,
		Authors:         ref.Authors,
		PublicationDate: ref.PublicationDate,
		Chunks:          chunks,
	}
}

func linksToResponse(links []domain.SimilarityLink) []similarityLinkResponse {
	out := make([]similarityLinkResponse, len(links))
	for i, link := range links {
		out[i] = similarityLinkResponse{
			Source:     link.Source,
			Target:     link.Target,
			Similarity: link.Similarity,
		}
	}
	return out
}

func domainPaperToResponse(p *domain.Paper) paperResponse {
	authors := make([]authorResponse, len(p.Authors))
	for i, a := range p.Authors {
		authors[i] = authorResponse{ID: a.ID, Name: a.Name}
	}
	return paperResponse{
		ID:            p.ID,
		Title:         p.Title,
		Abstract:      p.Abstract,
		Year:          p.Year,
		CitationCount: p.CitationCount,
		Authors:       authors,
	}
}

func domainPaperDetailToResponse(d *domain.PaperDetail) paperDetailResponse {
	return paperDetailResponse{
		paperResponse:  domainPaperToResponse(&d.Paper),
		ReferenceCount: d.ReferenceCount,
		CitedByCount:   d.CitedByCount,
	}
}

func domainPapersToList(papers []domain.Paper) listPapersResponse {
	out := make([]paperResponse, len(papers))
	for i := range papers {
		out[i] = domainPaperToResponse(&papers[i])
	}
	return listPapersResponse{Papers: out, TotalCount: len(out)}
}

func recommendationsToResponse(recs []domain.Recommendation) listRecommendationsResponse {
	out := make([]recommendationResponse, len(recs))
	for i, rec := range recs {
		out[i] = recommendationResponse{
			Paper:  domainPaperToResponse(rec.Paper),
			Score:  rec.Score,
			Reason: rec.Reason,
		}
	}
	return listRecommendationsResponse{Recommendations: out, TotalCount: len(out)}
}

func domainNetworkToResponse(n *domain.CitationNetwork) citationNetworkResponse {
	nodes := make([]networkNodeResponse, len(n.Nodes))
	for i, node := range n.Nodes {
		nodes[i] = networkNodeResponse{
			PaperID:       node.PaperID,
			Title:         node.Title,
			Year:          node.Year,
			CitationCount: node.CitationCount,
			Depth:         node.Depth,
		}
	}
	edges := make([]networkEdgeResponse, len(n.Edges))
	for i, edge := range n.Edges {
		edges[i] = networkEdgeResponse{
			CitingPaperID: edge.CitingPaperID,
			CitedPaperID:  edge.CitedPaperID,
			Relationship:  edge.Relationship,
			Similarity:    edge.Similarity,
		}
	}
	return citationNetworkResponse{
		RootID: n.RootID,
		Nodes:  nodes,
		Edges:  edges,
	}
}

func domainStatsToResponse(s *domain.CollectionStats) collectionStatsResponse {
	return collectionStatsResponse{
		CollectionID:   s.CollectionID,
		PaperCount:     s.PaperCount,
		TotalCitations: s.TotalCitations,
		AvgCitations:   s.AvgCitations,
		MinYear:        s.MinYear,
		MaxYear:        s.MaxYear,
	}
}

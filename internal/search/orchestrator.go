package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/scholia/literature-search-service/internal/domain"
	"github.com/scholia/literature-search-service/internal/llm"
	"github.com/scholia/literature-search-service/internal/observability"
	"github.com/scholia/literature-search-service/internal/providers/ragserver"
	"github.com/scholia/literature-search-service/internal/providers/semanticscholar"
	"github.com/scholia/literature-search-service/internal/similarity"
)

// contextDelimiter separates chunk or paper blocks in the synthesis context.
const contextDelimiter = "\n\n---\n\n"

// Default request parameters applied when the caller omits them.
const (
	DefaultLimit               = 5
	DefaultSimilarityThreshold = 0.1
)

// InternalProvider is the chunk-level vector search backend.
type InternalProvider interface {
	Search(ctx context.Context, query string, limit int, threshold float64) ([]ragserver.ChunkResult, error)
	Name() string
}

// ExternalProvider is the paper-level bibliographic search backend.
type ExternalProvider interface {
	Search(ctx context.Context, query string, limit int) ([]semanticscholar.PaperResult, error)
	Name() string
}

// Compile-time checks that the provider clients satisfy the interfaces.
var (
	_ InternalProvider = (*ragserver.Client)(nil)
	_ ExternalProvider = (*semanticscholar.Client)(nil)
)

// ExternalReference is a paper-granular reference from the external provider.
type ExternalReference struct {
	PaperID         string
	Title           string
	URL             string
	Authors         []string
	PublicationDate string
	TLDR            string
	CitationCount   int
	Venue           string
	FieldsOfStudy   []string
}

// InternalResult is the assembled response of the internal search flow.
type InternalResult struct {
	Query           string
	Answer          string
	References      []domain.Reference
	SimilarityGraph []domain.SimilarityLink
}

// ExternalResult is the assembled response of the external search flow.
type ExternalResult struct {
	Query           string
	Answer          string
	References      []ExternalReference
	SimilarityGraph []domain.SimilarityLink
}

// Orchestrator runs the end-to-end search pipeline for both flows. A request
// is all-or-nothing: any provider or synthesis failure aborts the whole
// request and no partial response is produced.
type Orchestrator struct {
	internal     InternalProvider
	external     ExternalProvider
	synthesizer  llm.AnswerSynthesizer
	grouper      *Grouper
	graphBuilder *similarity.GraphBuilder
	logger       zerolog.Logger
}

// NewOrchestrator creates a query orchestrator with its collaborators.
func NewOrchestrator(
	internal InternalProvider,
	external ExternalProvider,
	synthesizer llm.AnswerSynthesizer,
	grouper *Grouper,
	graphBuilder *similarity.GraphBuilder,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		internal:     internal,
		external:     external,
		synthesizer:  synthesizer,
		grouper:      grouper,
		graphBuilder: graphBuilder,
		logger:       logger,
	}
}

// SearchInternal runs the internal flow: one vector search call, reference
// grouping, similarity graph over chunk embeddings, then answer synthesis
// over the concatenated chunk contents.
func (o *Orchestrator) SearchInternal(ctx context.Context, query string, limit int, threshold float64) (*InternalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query_text", "must not be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	logger := observability.WithSearchContext(o.logger, "internal", query)

	chunks, err := o.internal.Search(ctx, query, limit, threshold)
	if err != nil {
		return nil, fmt.Errorf("internal provider search: %w", err)
	}

	logger.Debug().
		Str("provider", o.internal.Name()).
		Int("chunks", len(chunks)).
		Msg("internal search completed")

	references := o.grouper.Group(chunks)
	graph := o.graphBuilder.Build(chunkGraphItems(chunks))

	contents := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		contents = append(contents, chunk.Content)
	}

	answer, err := o.synthesizer.Synthesize(ctx, strings.Join(contents, contextDelimiter), query)
	if err != nil {
		return nil, fmt.Errorf("answer synthesis: %w", err)
	}

	return &InternalResult{
		Query:           query,
		Answer:          answer,
		References:      references,
		SimilarityGraph: graph,
	}, nil
}

// SearchExternal runs the external flow: the query is expanded by the
// synthesizer first, the expanded text is sent to the bibliographic provider,
// and the answer is synthesized over per-paper context blocks. Expansion must
// complete before the fetch fires since the expanded text is the payload.
func (o *Orchestrator) SearchExternal(ctx context.Context, query string, limit int) (*ExternalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query_text", "must not be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	logger := observability.WithSearchContext(o.logger, "external", query)

	expanded, err := o.synthesizer.ExpandQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query expansion: %w", err)
	}
	if expanded == "" {
		expanded = query
	}

	papers, err := o.external.Search(ctx, expanded, limit)
	if err != nil {
		return nil, fmt.Errorf("external provider search: %w", err)
	}

	logger.Debug().
		Str("provider", o.external.Name()).
		Str("expanded_query", expanded).
		Int("papers", len(papers)).
		Msg("external search completed")

	references := make([]ExternalReference, 0, len(papers))
	blocks := make([]string, 0, len(papers))
	for _, paper := range papers {
		references = append(references, externalReference(paper))
		blocks = append(blocks, paperContextBlock(paper))
	}

	graph := o.graphBuilder.Build(paperGraphItems(papers))

	answer, err := o.synthesizer.Synthesize(ctx, strings.Join(blocks, contextDelimiter), query)
	if err != nil {
		return nil, fmt.Errorf("answer synthesis: %w", err)
	}

	return &ExternalResult{
		Query:           query,
		Answer:          answer,
		References:      references,
		SimilarityGraph: graph,
	}, nil
}

// chunkGraphItems builds graph input from chunk embeddings. The graph is
// document level, so only the first embedding-carrying chunk per document is
// used; duplicates would otherwise produce self-edges.
func chunkGraphItems(chunks []ragserver.ChunkResult) []similarity.Item {
	seen := make(map[string]bool, len(chunks))
	items := make([]similarity.Item, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.DOI == "" || seen[chunk.DOI] {
			continue
		}
		seen[chunk.DOI] = true
		items = append(items, similarity.Item{ID: chunk.DOI, Embedding: chunk.Vector})
	}
	return items
}

// paperGraphItems builds graph input from the embeddings attached to external
// paper results.
func paperGraphItems(papers []semanticscholar.PaperResult) []similarity.Item {
	items := make([]similarity.Item, 0, len(papers))
	for _, paper := range papers {
		item := similarity.Item{ID: paper.PaperID}
		if paper.Embedding != nil {
			item.Embedding = paper.Embedding.Vector
		}
		items = append(items, item)
	}
	return items
}

// externalReference maps a provider paper payload to a reference record.
func externalReference(paper semanticscholar.PaperResult) ExternalReference {
	authors := make([]string, 0, len(paper.Authors))
	for _, author := range paper.Authors {
		authors = append(authors, author.Name)
	}

	ref := ExternalReference{
		PaperID:         paper.PaperID,
		Title:           paper.Title,
		URL:             paper.URL,
		Authors:         authors,
		PublicationDate: paper.PublicationDate,
		CitationCount:   paper.CitationCount,
		Venue:           paper.Venue,
		FieldsOfStudy:   paper.FieldsOfStudy,
	}
	if paper.TLDR != nil {
		ref.TLDR = paper.TLDR.Text
	}
	return ref
}

// paperContextBlock renders one human-readable context block per paper.
func paperContextBlock(paper semanticscholar.PaperResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", paper.Title)
	fmt.Fprintf(&b, "Authors: %s\n", strings.Join(authorNames(paper.Authors), ", "))
	fmt.Fprintf(&b, "Published: %s\n", paper.PublicationDate)
	fmt.Fprintf(&b, "Abstract: %s", paper.Abstract)
	return b.String()
}

func authorNames(authors []semanticscholar.Author) []string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.Name)
	}
	return names
}

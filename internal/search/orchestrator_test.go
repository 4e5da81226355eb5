package search

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholia/literature-search-service/internal/domain"
	"github.com/scholia/literature-search-service/internal/providers/ragserver"
	"github.com/scholia/literature-search-service/internal/providers/semanticscholar"
	"github.com/scholia/literature-search-service/internal/similarity"
)

// mockInternalProvider is a test double for the internal search backend.
type mockInternalProvider struct {
	searchFn func(ctx context.Context, query string, limit int, threshold float64) ([]ragserver.ChunkResult, error)
}

func (m *mockInternalProvider) Search(ctx context.Context, query string, limit int, threshold float64) ([]ragserver.ChunkResult, error) {
	return m.searchFn(ctx, query, limit, threshold)
}

func (m *mockInternalProvider) Name() string { return "mock internal" }

// mockExternalProvider is a test double for the bibliographic backend.
type mockExternalProvider struct {
	searchFn func(ctx context.Context, query string, limit int) ([]semanticscholar.PaperResult, error)
}

func (m *mockExternalProvider) Search(ctx context.Context, query string, limit int) ([]semanticscholar.PaperResult, error) {
	return m.searchFn(ctx, query, limit)
}

func (m *mockExternalProvider) Name() string { return "mock external" }

// mockSynthesizer is a test double for the answer synthesizer.
type mockSynthesizer struct {
	synthesizeFn  func(ctx context.Context, contextText, query string) (string, error)
	expandQueryFn func(ctx context.Context, query string) (string, error)
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, contextText, query string) (string, error) {
	return m.synthesizeFn(ctx, contextText, query)
}

func (m *mockSynthesizer) ExpandQuery(ctx context.Context, query string) (string, error) {
	return m.expandQueryFn(ctx, query)
}

func (m *mockSynthesizer) Provider() string { return "mock" }
func (m *mockSynthesizer) Model() string    { return "mock-model" }

func newTestOrchestrator(internal InternalProvider, external ExternalProvider, synth *mockSynthesizer) *Orchestrator {
	logger := zerolog.Nop()
	return NewOrchestrator(
		internal,
		external,
		synth,
		NewGrouper(logger),
		similarity.NewGraphBuilder(similarity.DefaultThreshold, logger),
		logger,
	)
}

func TestOrchestrator_SearchInternal(t *testing.T) {
	t.Run("full flow groups references and synthesizes over chunk contents", func(t *testing.T) {
		chunks := []ragserver.ChunkResult{
			{DOI: "10.1/aaa", Title: "Paper A", Authors: "Alice Smith", Published: "2023", Content: "first chunk", ChunkIndex: 0, SimilarityScore: 0.9, Vector: []float64{1, 0}},
			{DOI: "10.1/aaa", Title: "Paper A", Authors: "Alice Smith", Published: "2023", Content: "second chunk", ChunkIndex: 1, SimilarityScore: 0.8},
			{DOI: "10.1/bbb", Title: "Paper B", Authors: "Bob Jones", Published: "2022", Content: "other doc", ChunkIndex: 0, SimilarityScore: 0.7, Vector: []float64{1, 0.1}},
		}

		var gotQuery, gotContext string
		internal := &mockInternalProvider{
			searchFn: func(ctx context.Context, query string, limit int, threshold float64) ([]ragserver.ChunkResult, error) {
				assert.Equal(t, "how do transformers work", query)
				assert.Equal(t, 5, limit)
				assert.Equal(t, 0.1, threshold)
				return chunks, nil
			},
		}
		synth := &mockSynthesizer{
			synthesizeFn: func(ctx context.Context, contextText, query string) (string, error) {
				gotContext = contextText
				gotQuery = query
				return "the answer", nil
			},
		}

		o := newTestOrchestrator(internal, nil, synth)

		result, err := o.SearchInternal(context.Background(), "how do transformers work", 0, 0)

		require.NoError(t, err)
		assert.Equal(t, "how do transformers work", result.Query)
		assert.Equal(t, "the answer", result.Answer)

		require.Len(t, result.References, 2)
		assert.Equal(t, "10.1/aaa", result.References[0].PaperID)
		assert.Len(t, result.References[0].Chunks, 2)
		assert.Equal(t, "10.1/bbb", result.References[1].PaperID)

		// Similarity graph over the two documents carrying embeddings.
		require.Len(t, result.SimilarityGraph, 1)
		assert.Equal(t, "10.1/aaa", result.SimilarityGraph[0].Source)
		assert.Equal(t, "10.1/bbb", result.SimilarityGraph[0].Target)

		// Synthesis context concatenates every chunk body with the delimiter.
		assert.Equal(t, "how do transformers work", gotQuery)
		assert.Equal(t, strings.Join([]string{"first chunk", "second chunk", "other doc"}, contextDelimiter), gotContext)
	})

	t.Run("empty query is rejected before any provider call", func(t *testing.T) {
		internal := &mockInternalProvider{
			searchFn: func(ctx context.Context, query string, limit int, threshold float64) ([]ragserver.ChunkResult, error) {
				t.Fatal("provider must not be called")
				return nil, nil
			},
		}

		o := newTestOrchestrator(internal, nil, &mockSynthesizer{})

		_, err := o.SearchInternal(context.Background(), "   ", 5, 0.1)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("provider upstream error aborts the request", func(t *testing.T) {
		upstream := domain.NewExternalAPIError("RAG backend", 502, "bad gateway", nil)
		internal := &mockInternalProvider{
			searchFn: func(ctx context.Context, query string, limit int, threshold float64) ([]ragserver.ChunkResult, error) {
				return nil, upstream
			},
		}
		synth := &mockSynthesizer{
			synthesizeFn: func(ctx context.Context, contextText, query string) (string, error) {
				t.Fatal("synthesis must not run after a provider failure")
				return "", nil
			},
		}

		o := newTestOrchestrator(internal, nil, synth)

		_, err := o.SearchInternal(context.Background(), "query", 5, 0.1)
		require.Error(t, err)

		var apiErr *domain.ExternalAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 502, apiErr.StatusCode)
	})

	t.Run("synthesis failure aborts the request", func(t *testing.T) {
		internal := &mockInternalProvider{
			searchFn: func(ctx context.Context, query string, limit int, threshold float64) ([]ragserver.ChunkResult, error) {
				return []ragserver.ChunkResult{{DOI: "10.1/aaa", Content: "c", ChunkIndex: 0}}, nil
			},
		}
		synth := &mockSynthesizer{
			synthesizeFn: func(ctx context.Context, contextText, query string) (string, error) {
				return "", domain.ErrServiceUnavailable
			},
		}

		o := newTestOrchestrator(internal, nil, synth)

		_, err := o.SearchInternal(context.Background(), "query", 5, 0.1)
		require.ErrorIs(t, err, domain.ErrServiceUnavailable)
	})
}

func TestOrchestrator_SearchExternal(t *testing.T) {
	t.Run("expansion runs before the fetch and the expanded text is the payload", func(t *testing.T) {
		var calls []string

		synth := &mockSynthesizer{
			expandQueryFn: func(ctx context.Context, query string) (string, error) {
				calls = append(calls, "expand")
				assert.Equal(t, "gnn message passing", query)
				return "graph neural networks|message passing", nil
			},
			synthesizeFn: func(ctx context.Context, contextText, query string) (string, error) {
				calls = append(calls, "synthesize")
				assert.Contains(t, contextText, "Title: GNN Survey")
				assert.Contains(t, contextText, "Abstract: A survey.")
				assert.Equal(t, "gnn message passing", query)
				return "external answer", nil
			},
		}
		external := &mockExternalProvider{
			searchFn: func(ctx context.Context, query string, limit int) ([]semanticscholar.PaperResult, error) {
				calls = append(calls, "fetch")
				assert.Equal(t, "graph neural networks|message passing", query)
				return []semanticscholar.PaperResult{
					{
						PaperID:         "p1",
						Title:           "GNN Survey",
						Abstract:        "A survey.",
						URL:             "https://example.org/p1",
						Venue:           "TMLR",
						PublicationDate: "2023-04-01",
						CitationCount:   12,
						FieldsOfStudy:   []string{"Computer Science"},
						Authors:         []semanticscholar.Author{{AuthorID: "a1", Name: "Alice Smith"}},
						TLDR:            &semanticscholar.TLDR{Model: "tldr@v2", Text: "Surveys GNNs."},
						Embedding:       &semanticscholar.Embedding{Model: "specter_v2", Vector: []float64{0.5, 0.5}},
					},
					{
						PaperID: "p2",
						Title:   "Message Passing Networks",
						Authors: []semanticscholar.Author{{AuthorID: "a2", Name: "Bob Jones"}},
					},
				}, nil
			},
		}

		o := newTestOrchestrator(nil, external, synth)

		result, err := o.SearchExternal(context.Background(), "gnn message passing", 5)

		require.NoError(t, err)
		assert.Equal(t, []string{"expand", "fetch", "synthesize"}, calls)

		assert.Equal(t, "gnn message passing", result.Query)
		assert.Equal(t, "external answer", result.Answer)

		require.Len(t, result.References, 2)
		first := result.References[0]
		assert.Equal(t, "p1", first.PaperID)
		assert.Equal(t, "GNN Survey", first.Title)
		assert.Equal(t, "https://example.org/p1", first.URL)
		assert.Equal(t, []string{"Alice Smith"}, first.Authors)
		assert.Equal(t, "Surveys GNNs.", first.TLDR)
		assert.Equal(t, 12, first.CitationCount)
		assert.Equal(t, "TMLR", first.Venue)

		// p2 carries no embedding, so no edge can form.
		assert.Empty(t, result.SimilarityGraph)
	})

	t.Run("expansion failure aborts before the provider is called", func(t *testing.T) {
		synth := &mockSynthesizer{
			expandQueryFn: func(ctx context.Context, query string) (string, error) {
				return "", domain.ErrServiceUnavailable
			},
		}
		external := &mockExternalProvider{
			searchFn: func(ctx context.Context, query string, limit int) ([]semanticscholar.PaperResult, error) {
				t.Fatal("provider must not be called after expansion failure")
				return nil, nil
			},
		}

		o := newTestOrchestrator(nil, external, synth)

		_, err := o.SearchExternal(context.Background(), "query", 5)
		require.ErrorIs(t, err, domain.ErrServiceUnavailable)
	})

	t.Run("blank expansion falls back to the original query", func(t *testing.T) {
		synth := &mockSynthesizer{
			expandQueryFn: func(ctx context.Context, query string) (string, error) {
				return "", nil
			},
			synthesizeFn: func(ctx context.Context, contextText, query string) (string, error) {
				return "answer", nil
			},
		}
		external := &mockExternalProvider{
			searchFn: func(ctx context.Context, query string, limit int) ([]semanticscholar.PaperResult, error) {
				assert.Equal(t, "original query", query)
				return nil, nil
			},
		}

		o := newTestOrchestrator(nil, external, synth)

		_, err := o.SearchExternal(context.Background(), "original query", 5)
		require.NoError(t, err)
	})

	t.Run("upstream status from the provider is preserved", func(t *testing.T) {
		synth := &mockSynthesizer{
			expandQueryFn: func(ctx context.Context, query string) (string, error) {
				return "expanded", nil
			},
		}
		external := &mockExternalProvider{
			searchFn: func(ctx context.Context, query string, limit int) ([]semanticscholar.PaperResult, error) {
				return nil, domain.NewExternalAPIError("Semantic Scholar", 429, "rate limited", nil)
			},
		}

		o := newTestOrchestrator(nil, external, synth)

		_, err := o.SearchExternal(context.Background(), "query", 5)

		var apiErr *domain.ExternalAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 429, apiErr.StatusCode)
		assert.Equal(t, "Semantic Scholar", apiErr.Source)
	})
}

func TestOrchestrator_LogContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	internal := &mockInternalProvider{
		searchFn: func(ctx context.Context, query string, limit int, threshold float64) ([]ragserver.ChunkResult, error) {
			return []ragserver.ChunkResult{{DOI: "10.1/aaa", Content: "c", ChunkIndex: 0}}, nil
		},
	}
	synth := &mockSynthesizer{
		synthesizeFn: func(ctx context.Context, contextText, query string) (string, error) {
			return "answer", nil
		},
	}

	o := NewOrchestrator(
		internal,
		nil,
		synth,
		NewGrouper(logger),
		similarity.NewGraphBuilder(similarity.DefaultThreshold, logger),
		logger,
	)

	_, err := o.SearchInternal(context.Background(), "attention mechanisms", 5, 0.1)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"flow":"internal"`)
	assert.Contains(t, buf.String(), `"query":"attention mechanisms"`)
}

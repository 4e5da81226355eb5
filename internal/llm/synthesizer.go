// Package llm provides answer synthesis and query expansion backed by LLM
// provider APIs (OpenAI and Anthropic).
package llm

import (
	"context"
	"fmt"
)

// Operation labels for LLM request metrics.
const (
	operationSynthesize  = "synthesize"
	operationExpandQuery = "expand_query"
)

// MetricsRecorder records LLM request outcomes. *observability.Metrics
// satisfies it; a nil recorder disables instrumentation.
type MetricsRecorder interface {
	RecordLLMRequest(operation, model string, durationSeconds float64)
	RecordLLMRequestFailed(operation, model, errorType string)
}

// AnswerSynthesizer turns retrieved context into a narrative answer and
// expands free-form questions into keyword queries for bibliographic search.
type AnswerSynthesizer interface {
	// Synthesize generates a Markdown answer to the query grounded in the
	// given context string.
	Synthesize(ctx context.Context, contextText, query string) (string, error)

	// ExpandQuery extracts the core keywords of the query and augments them
	// with related search terms, returning a single-line query string.
	ExpandQuery(ctx context.Context, query string) (string, error)

	// Provider returns the name of the LLM provider.
	Provider() string

	// Model returns the model identifier being used.
	Model() string
}

// buildAnswerPrompt builds the system and user prompts for answer synthesis.
func buildAnswerPrompt(contextText, query string) (system, user string) {
	system = "You are a helpful research assistant."
	user = fmt.Sprintf(`User question: %s

Reference material:
%s

Using the reference material above, write an answer to the question in Markdown. Cite the material where relevant.`, query, contextText)
	return system, user
}

// buildExpansionPrompt builds the system and user prompts for query expansion.
func buildExpansionPrompt(query string) (system, user string) {
	system = "You are a helpful assistant specialized in extracting keywords for academic search."
	user = fmt.Sprintf(`The user's question is: %q

Extract the core keywords of this question and list them with one useful synonym or related term, separated by '|', on a single line.
Example: "latest transformer architectures" -> "Transformer architecture|attention mechanism"`, query)
	return system, user
}

package llm

import (
	"fmt"
	"time"
)

// FactoryConfig holds the parameters needed to create an AnswerSynthesizer.
// This is defined in the llm package to avoid importing the config package,
// keeping the llm package free of infrastructure dependencies.
type FactoryConfig struct {
	// Provider is the LLM provider name ("openai" or "anthropic").
	Provider string
	// Temperature is the LLM temperature setting.
	Temperature float64
	// Timeout is the timeout for LLM API calls.
	Timeout time.Duration
	// OpenAI contains OpenAI-specific settings.
	OpenAI OpenAIConfig
	// Anthropic contains Anthropic-specific settings.
	Anthropic AnthropicConfig
}

// NewAnswerSynthesizer creates an AnswerSynthesizer based on the configuration.
// Supports "openai" and "anthropic" providers. Returns an error for unsupported
// or empty provider values. A nil metrics recorder disables instrumentation.
func NewAnswerSynthesizer(cfg FactoryConfig, metrics MetricsRecorder) (AnswerSynthesizer, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI, cfg.Temperature, cfg.Timeout, metrics), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic, cfg.Temperature, cfg.Timeout, metrics), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}

// Compile-time interface checks.
var (
	_ AnswerSynthesizer = (*OpenAIProvider)(nil)
	_ AnswerSynthesizer = (*AnthropicProvider)(nil)
)

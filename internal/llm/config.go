// Package llm provides centralized LLM configuration and client abstractions.
// The answering engine talks to one Client; the provider behind it is chosen by configuration.
package llm

import (
	"fmt"
	"maps"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: short factual answers, picking one option
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: free-text answers composed from the profile
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is Google Gemini through the Generative Language API
	ProviderGemini Provider = "gemini"
	// ProviderVertex is Gemini served by Vertex AI
	ProviderVertex Provider = "vertex"
	// ProviderOpenAI is OpenAI chat models through langchaingo
	ProviderOpenAI Provider = "openai"
)

// ParseProvider validates a provider name from configuration.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(s); p {
	case ProviderGemini, ProviderVertex, ProviderOpenAI:
		return p, nil
	case "":
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q", s)
	}
}

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.4,
	}
}

// DefaultVertexConfig returns the default Vertex AI configuration
func DefaultVertexConfig() *Config {
	cfg := DefaultGeminiConfig()
	cfg.Provider = ProviderVertex
	return cfg
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o",
			TierAdvanced: "gpt-4o",
		},
		Temperature: 0.42,
	}
}

// ConfigFor returns the default configuration of a provider.
func ConfigFor(p Provider) *Config {
	switch p {
	case ProviderVertex:
		return DefaultVertexConfig()
	case ProviderOpenAI:
		return DefaultOpenAIConfig()
	default:
		return DefaultGeminiConfig()
	}
}

// modelFallback is tried in order when a tier has no model of its own.
var modelFallback = []ModelTier{TierStandard, TierLite}

// GetModel returns the model configured for tier, falling back to the standard and then the lite
// model. It returns "" when none of them is set.
func (c *Config) GetModel(tier ModelTier) string {
	if m := c.Models[tier]; m != "" {
		return m
	}
	for _, t := range modelFallback {
		if m := c.Models[t]; m != "" {
			return m
		}
	}
	return ""
}

// WithModel returns a copy of c that uses model for tier. c is left unchanged.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = maps.Clone(c.Models)
	if out.Models == nil {
		out.Models = map[ModelTier]string{}
	}
	out.Models[tier] = model
	return &out
}

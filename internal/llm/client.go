package llm

import (
	"context"
	"fmt"
)

// Example is one few-shot exchange shown to the model before the real question.
type Example struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Request is a chat completion request: a system prompt, few-shot examples, then the user prompt.
type Request struct {
	System   string
	Examples []Example
	User     string
}

// Client is an abstraction over LLM providers
type Client interface {
	// Complete runs the request against the model for the given tier and returns the raw response text
	Complete(ctx context.Context, req Request, tier ModelTier) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// Credentials carries whatever the selected provider needs to authenticate.
type Credentials struct {
	APIKey   string
	Project  string
	Location string
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, creds Credentials) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, creds.APIKey)
	case ProviderVertex:
		return NewVertexClient(ctx, config, creds.Project, creds.Location)
	case ProviderOpenAI:
		return NewOpenAIClient(config, creds.APIKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIClient implements Client for OpenAI chat models through langchaingo.
type OpenAIClient struct {
	model  llms.Model
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(config.GetModel(TierStandard)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return &OpenAIClient{model: model, config: config}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	log.Printf("[LLM] Calling OpenAI %s (%s)", modelName, tier)
	resp, err := c.model.GenerateContent(ctx, BuildMessages(req),
		llms.WithModel(modelName),
		llms.WithTemperature(float64(c.config.Temperature)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Content, nil
}

func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client needs no teardown.
func (c *OpenAIClient) Close() error {
	return nil
}

// BuildMessages lays a request out as system, alternating example turns, then the human prompt.
func BuildMessages(req Request) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, 2+2*len(req.Examples))
	if req.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, ex := range req.Examples {
		msgs = append(msgs,
			llms.TextParts(llms.ChatMessageTypeHuman, ex.User),
			llms.TextParts(llms.ChatMessageTypeAI, ex.Assistant),
		)
	}
	return append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, req.User))
}

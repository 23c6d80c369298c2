package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient answers through the Gemini API with an API key.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient opens a Gemini API client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

// Complete replays the few-shot examples as chat history, then sends the user prompt.
func (c *GeminiClient) Complete(ctx context.Context, req Request, tier ModelTier) (string, error) {
	name := c.config.GetModel(tier)
	if name == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(name)
	model.SetTemperature(c.config.Temperature)
	model.SetCandidateCount(1)
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	session := model.StartChat()
	session.History = geminiHistory(req.Examples)

	log.Printf("[LLM] Calling %s (%s, %d examples)", name, tier, len(req.Examples))
	resp, err := session.SendMessage(ctx, genai.Text(req.User))
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", name, err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("gemini %s blocked the prompt: %s", name, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini %s returned no candidates", name)
	}
	return candidateText(resp.Candidates[0].Content)
}

// GetModel returns the model used for tier.
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// geminiHistory turns few-shot examples into alternating user and model turns.
func geminiHistory(examples []Example) []*genai.Content {
	history := make([]*genai.Content, 0, 2*len(examples))
	for _, ex := range examples {
		history = append(history,
			&genai.Content{Role: "user", Parts: []genai.Part{genai.Text(ex.User)}},
			&genai.Content{Role: "model", Parts: []genai.Part{genai.Text(ex.Assistant)}},
		)
	}
	return history
}

// candidateText concatenates the text parts of a candidate.
func candidateText(content *genai.Content) (string, error) {
	if content == nil {
		return "", errors.New("response candidate has no content")
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("response has no text parts")
	}
	return sb.String(), nil
}

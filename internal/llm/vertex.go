package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// DefaultVertexLocation is used when no location is configured.
const DefaultVertexLocation = "us-central1"

// VertexClient implements Client for Gemini models served by Vertex AI.
// Authentication uses application default credentials.
type VertexClient struct {
	client *genai.Client
	config *Config
}

// NewVertexClient creates a new Vertex AI client
func NewVertexClient(ctx context.Context, config *Config, projectID, location string) (*VertexClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("google cloud project is required for Vertex AI")
	}
	if location == "" {
		location = DefaultVertexLocation
	}

	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexClient{client: client, config: config}, nil
}

func (v *VertexClient) Complete(ctx context.Context, req Request, tier ModelTier) (string, error) {
	modelName := v.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := v.client.GenerativeModel(modelName)
	model.SetTemperature(v.config.Temperature)
	model.SetTopP(0.95)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	cs := model.StartChat()
	for _, ex := range req.Examples {
		cs.History = append(cs.History,
			&genai.Content{Role: "user", Parts: []genai.Part{genai.Text(ex.User)}},
			&genai.Content{Role: "model", Parts: []genai.Part{genai.Text(ex.Assistant)}},
		)
	}

	log.Printf("[LLM] Calling Vertex AI %s (%s)", modelName, tier)
	resp, err := cs.SendMessage(ctx, genai.Text(req.User))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return sb.String(), nil
}

func (v *VertexClient) GetModel(tier ModelTier) string {
	return v.config.GetModel(tier)
}

// Close closes the Vertex AI client
func (v *VertexClient) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

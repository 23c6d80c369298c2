package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/quick-apply/internal/llm"
	"github.com/jonathan/quick-apply/internal/prompts"
	"github.com/jonathan/quick-apply/internal/types"
)

const (
	// AnswerTag precedes the answer span in model output. The last occurrence counts.
	AnswerTag = "CANDIDATE_ANSWER: "
	// NoDataSentinel is how the model reports that the profile cannot answer a question.
	NoDataSentinel = "NO_DATA"

	// PromptFile holds the answer-freely and answer-with-options prompt sets.
	PromptFile = "answering.json"
)

// Generative answers questions by asking a language model about the profile.
type Generative struct {
	client  llm.Client
	resume  string
	freely  prompts.Set
	options prompts.Set

	// FreeTier and OptionsTier select the model for each question type.
	FreeTier    llm.ModelTier
	OptionsTier llm.ModelTier
	Verbose     bool
}

var _ Source = (*Generative)(nil)

// NewGenerative renders the profile once and loads both prompt sets.
func NewGenerative(client llm.Client, profile *types.Profile) (*Generative, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	resume, err := RenderProfile(profile)
	if err != nil {
		return nil, err
	}
	freely, err := prompts.Get(PromptFile, "answer-freely")
	if err != nil {
		return nil, err
	}
	options, err := prompts.Get(PromptFile, "answer-with-options")
	if err != nil {
		return nil, err
	}
	return &Generative{
		client:      client,
		resume:      resume,
		freely:      freely,
		options:     options,
		FreeTier:    llm.TierStandard,
		OptionsTier: llm.TierLite,
	}, nil
}

// RenderProfile serialises the profile as YAML for inclusion in prompts.
func RenderProfile(profile *types.Profile) (string, error) {
	if profile == nil {
		return "", fmt.Errorf("profile is required")
	}
	out, err := yaml.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("failed to render profile: %w", err)
	}
	return string(out), nil
}

func (g *Generative) AnswerFreely(ctx context.Context, question string) (string, error) {
	req := g.freely.Request(map[string]string{
		"Resume":   g.resume,
		"Question": question,
	})

	resp, err := g.client.Complete(ctx, req, g.FreeTier)
	if err != nil {
		return "", &NoAnswerProducedError{Question: question, Reason: "language model call failed", Cause: err}
	}

	ans, err := parseTagged(question, nil, resp)
	if err != nil {
		return "", err
	}
	g.logAnswer(question, ans)
	return ans, nil
}

func (g *Generative) AnswerFromOptions(ctx context.Context, question string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", &NoAnswerProducedError{Question: question, Reason: "question has no options"}
	}
	opts, err := json.Marshal(choices)
	if err != nil {
		return "", fmt.Errorf("failed to encode options: %w", err)
	}
	req := g.options.Request(map[string]string{
		"Resume":   g.resume,
		"Question": question,
		"Options":  string(opts),
	})

	resp, err := g.client.Complete(ctx, req, g.OptionsTier)
	if err != nil {
		return "", &NoAnswerProducedError{Question: question, Choices: choices, Reason: "language model call failed", Cause: err}
	}

	ans, err := parseTagged(question, choices, resp)
	if err != nil {
		return "", err
	}
	choice, ok := MatchChoice(ans, choices)
	if !ok {
		return "", &NoAnswerProducedError{
			Question: question,
			Choices:  choices,
			Response: resp,
			Reason:   fmt.Sprintf("answer %q is not one of the options", ans),
		}
	}
	g.logAnswer(question, choice)
	return choice, nil
}

// parseTagged turns a raw response into an answer or a NoAnswerProducedError.
// The sentinel anywhere in the response wins over any tagged answer.
func parseTagged(question string, choices []string, resp string) (string, error) {
	fail := func(reason string) error {
		return &NoAnswerProducedError{Question: question, Choices: choices, Response: resp, Reason: reason}
	}
	if llm.ContainsSentinel(resp, NoDataSentinel) {
		return "", fail("model reported no data")
	}
	ans, ok := llm.ExtractTagged(resp, AnswerTag)
	if !ok {
		return "", fail("response has no answer tag")
	}
	if ans == "" {
		return "", fail("model returned an empty answer")
	}
	return ans, nil
}

func (g *Generative) logAnswer(question, ans string) {
	if g.Verbose {
		log.Printf("[LLM] %q -> %q", question, ans)
	}
}

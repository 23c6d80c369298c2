// Package answer resolves form questions to answers.
//
// A direct lookup table keyed by exact question label is consulted first; only questions it
// cannot answer reach the generative source, which asks a language model using the profile.
package answer

import (
	"context"
	"strings"
)

// Source answers form questions.
type Source interface {
	// AnswerFreely returns a free-text answer to question.
	AnswerFreely(ctx context.Context, question string) (string, error)
	// AnswerFromOptions returns exactly one element of choices.
	AnswerFromOptions(ctx context.Context, question string, choices []string) (string, error)
}

// Chain tries the direct lookup before delegating to the fallback source.
type Chain struct {
	Direct   *DirectLookup
	Fallback Source
}

var _ Source = (*Chain)(nil)

// NewChain composes a direct lookup with a fallback source.
func NewChain(direct *DirectLookup, fallback Source) *Chain {
	return &Chain{Direct: direct, Fallback: fallback}
}

func (c *Chain) AnswerFreely(ctx context.Context, question string) (string, error) {
	if c.Direct != nil {
		if v, ok := c.Direct.Lookup(question, nil); ok {
			return v, nil
		}
	}
	if c.Fallback == nil {
		return "", &NoAnswerProducedError{Question: question, Reason: "no direct answer and no generator configured"}
	}
	return c.Fallback.AnswerFreely(ctx, question)
}

func (c *Chain) AnswerFromOptions(ctx context.Context, question string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", &NoAnswerProducedError{Question: question, Reason: "question has no options"}
	}
	if c.Direct != nil {
		if v, ok := c.Direct.Lookup(question, choices); ok {
			if choice, ok := MatchChoice(v, choices); ok {
				return choice, nil
			}
		}
	}
	if c.Fallback == nil {
		return "", &NoAnswerProducedError{Question: question, Choices: choices, Reason: "no direct answer and no generator configured"}
	}
	return c.Fallback.AnswerFromOptions(ctx, question, choices)
}

// MatchChoice maps an answer onto the choice it names. Exact matches win over
// case-insensitive ones; surrounding quotes and whitespace are ignored.
func MatchChoice(answer string, choices []string) (string, bool) {
	answer = strings.Trim(strings.TrimSpace(answer), `"'`)
	for _, c := range choices {
		if c == answer {
			return c, true
		}
	}
	for _, c := range choices {
		if strings.EqualFold(strings.TrimSpace(c), answer) {
			return c, true
		}
	}
	return "", false
}

// NormalizeLabel folds a question label for exact-match lookups.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

package types

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// BlacklistMode selects how title keywords are matched.
type BlacklistMode string

const (
	BlacklistWholeWords   BlacklistMode = "whole_words"
	BlacklistPartialWords BlacklistMode = "partial_words"
	BlacklistLLMFilter    BlacklistMode = "llm_filter"
)

// ParseBlacklistMode maps a configured mode name to a BlacklistMode.
// Only whole_words is supported; the other known modes are rejected explicitly.
func ParseBlacklistMode(s string) (BlacklistMode, error) {
	switch mode := BlacklistMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "", BlacklistWholeWords:
		return BlacklistWholeWords, nil
	case BlacklistPartialWords, BlacklistLLMFilter:
		return "", fmt.Errorf("blacklist mode %q is not supported", mode)
	default:
		return "", fmt.Errorf("unknown blacklist mode %q", s)
	}
}

// BlacklistRule is the configured exclusion rule for listings.
type BlacklistRule struct {
	Mode          BlacklistMode `yaml:"mode"`
	Companies     []string      `yaml:"company"`
	TitleKeywords []string      `yaml:"title_keywords"`
}

// Excludes reports whether the listing is blacklisted: an exact (case-insensitive, trimmed)
// company name match, or a run of title tokens equal to one of the keywords.
func (b BlacklistRule) Excludes(job JobListing) bool {
	company := normalizeToken(job.Company)
	for _, c := range b.Companies {
		if company != "" && normalizeToken(c) == company {
			return true
		}
	}

	title := titleTokens(job.Title)
	for _, kw := range b.TitleKeywords {
		kwTokens := titleTokens(kw)
		if len(kwTokens) == 0 {
			continue
		}
		if containsRun(title, kwTokens) {
			return true
		}
	}
	return false
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// titleTokens splits on anything that is not a letter, digit, '+' or '#', so "C++/Unity" yields
// "c++", "unity" and "Objective-C" yields "objective", "c".
func titleTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

// containsRun reports whether words occur in tokens consecutively and in order.
func containsRun(tokens, words []string) bool {
	for i := 0; i+len(words) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(words)], words) {
			return true
		}
	}
	return false
}

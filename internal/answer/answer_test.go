package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/quick-apply/internal/llm"
	"github.com/jonathan/quick-apply/internal/llm/llmtest"
	"github.com/jonathan/quick-apply/internal/types"
)

func testProfile() *types.Profile {
	return &types.Profile{
		Personal: types.Personal{
			Name:        "Ada",
			Surname:     "Lovelace",
			Email:       "ada@example.com",
			Phone:       "5550100",
			PhonePrefix: "+44",
			Country:     "United Kingdom",
			City:        "London",
			LinkedIn:    "https://www.linkedin.com/in/ada",
		},
		HardSkills: []string{"Go", "PostgreSQL"},
	}
}

func newChain(t *testing.T, mock *llmtest.MockClient) *Chain {
	t.Helper()
	gen, err := NewGenerative(mock, testProfile())
	require.NoError(t, err)
	return NewChain(NewDirectLookup(testProfile(), nil), gen)
}

func TestChain_DirectLookupNeverCallsGenerator(t *testing.T) {
	ctx := context.Background()
	mock := llmtest.Respond("CANDIDATE_ANSWER: wrong")
	chain := newChain(t, mock)

	tests := []struct {
		question string
		choices  []string
		want     string
	}{
		{"First name", nil, "Ada"},
		{"  first   NAME ", nil, "Ada"},
		{"Last name", nil, "Lovelace"},
		{"Email address", nil, "ada@example.com"},
		{"Mobile phone number", nil, "5550100"},
		{"LinkedIn Profile", nil, "https://www.linkedin.com/in/ada"},
		{"Email address", []string{"other@example.com", "ada@example.com"}, "ada@example.com"},
		{"Phone country code", []string{"United States (+1)", "United Kingdom (+44)", "Jersey (+44)"}, "United Kingdom (+44)"},
		{"I agree to the Terms and Conditions", []string{"I agree to the Terms and Conditions"}, "I agree to the Terms and Conditions"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			var got string
			var err error
			if tt.choices == nil {
				got, err = chain.AnswerFreely(ctx, tt.question)
			} else {
				got, err = chain.AnswerFromOptions(ctx, tt.question, tt.choices)
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, 0, mock.Calls())
}

func TestChain_FallsThroughToGenerator(t *testing.T) {
	ctx := context.Background()
	mock := llmtest.Respond("Go since 2019.\nCANDIDATE_ANSWER: 2-5")
	chain := newChain(t, mock)

	got, err := chain.AnswerFromOptions(ctx, "Years of experience", []string{"0-1", "2-5", "5+"})
	require.NoError(t, err)
	assert.Equal(t, "2-5", got)
	assert.Equal(t, 1, mock.Calls())

	req := mock.Requests()[0]
	assert.Contains(t, req.User, "Years of experience")
	assert.Contains(t, req.User, `["0-1","2-5","5+"]`)
	assert.Contains(t, req.User, "name: Ada")
}

func TestChain_DirectValueNotInChoicesFallsThrough(t *testing.T) {
	mock := llmtest.Respond("CANDIDATE_ANSWER: Paris")
	chain := newChain(t, mock)

	got, err := chain.AnswerFromOptions(context.Background(), "City", []string{"Paris", "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "Paris", got)
	assert.Equal(t, 1, mock.Calls())
}

func TestChain_EmptyProfileValueFallsThrough(t *testing.T) {
	mock := llmtest.Respond("CANDIDATE_ANSWER: octocat")
	chain := newChain(t, mock)

	got, err := chain.AnswerFreely(context.Background(), "GitHub")
	require.NoError(t, err)
	assert.Equal(t, "octocat", got)
	assert.Equal(t, 1, mock.Calls())
}

func TestGenerative_NoAnswerProduced(t *testing.T) {
	tests := []struct {
		name     string
		response string
		choices  []string
		reason   string
	}{
		{"sentinel as answer", "CANDIDATE_ANSWER: NO_DATA", nil, "no data"},
		{"sentinel before tag", "NO_DATA here\nCANDIDATE_ANSWER: 3", nil, "no data"},
		{"missing tag", "I would say three years", nil, "no answer tag"},
		{"empty answer", "CANDIDATE_ANSWER:   ", nil, "empty answer"},
		{"option not offered", "CANDIDATE_ANSWER: 10+", []string{"0-1", "2-5"}, "not one of the options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewGenerative(llmtest.Respond(tt.response), testProfile())
			require.NoError(t, err)

			var got string
			if tt.choices == nil {
				got, err = gen.AnswerFreely(context.Background(), "Hobbies")
			} else {
				got, err = gen.AnswerFromOptions(context.Background(), "Hobbies", tt.choices)
			}

			var na *NoAnswerProducedError
			require.ErrorAs(t, err, &na)
			assert.Empty(t, got)
			assert.Equal(t, "Hobbies", na.Question)
			assert.Contains(t, na.Reason, tt.reason)
			assert.Equal(t, "Hobbies", na.AttemptContext().Label)
		})
	}
}

func TestGenerative_ClientErrorIsNoAnswer(t *testing.T) {
	boom := errors.New("quota exceeded")
	mock := &llmtest.MockClient{CompleteFunc: func(context.Context, llm.Request, llm.ModelTier) (string, error) {
		return "", boom
	}}
	gen, err := NewGenerative(mock, testProfile())
	require.NoError(t, err)

	_, err = gen.AnswerFreely(context.Background(), "Why us?")
	var na *NoAnswerProducedError
	require.ErrorAs(t, err, &na)
	assert.ErrorIs(t, err, boom)
}

func TestGenerative_TiersAndLastTagWins(t *testing.T) {
	var tiers []llm.ModelTier
	mock := &llmtest.MockClient{CompleteFunc: func(_ context.Context, _ llm.Request, tier llm.ModelTier) (string, error) {
		tiers = append(tiers, tier)
		return "CANDIDATE_ANSWER: draft\nCANDIDATE_ANSWER: \"No\"", nil
	}}
	gen, err := NewGenerative(mock, testProfile())
	require.NoError(t, err)

	got, err := gen.AnswerFromOptions(context.Background(), "Need sponsorship?", []string{"Yes", "No"})
	require.NoError(t, err)
	assert.Equal(t, "No", got)

	_, err = gen.AnswerFreely(context.Background(), "Summary")
	require.NoError(t, err)
	assert.Equal(t, []llm.ModelTier{llm.TierLite, llm.TierStandard}, tiers)
}

func TestDirectLookup_Overrides(t *testing.T) {
	d := NewDirectLookup(testProfile(), map[string]string{
		"Notice period":  "2 weeks",
		"First name":     "Augusta",
		"Empty override": "",
	})

	v, ok := d.Lookup("notice period", nil)
	assert.True(t, ok)
	assert.Equal(t, "2 weeks", v)

	v, ok = d.Lookup("First name", nil)
	assert.True(t, ok)
	assert.Equal(t, "Augusta", v)

	_, ok = d.Lookup("Empty override", nil)
	assert.False(t, ok, "a blank override answers nothing")

	_, ok = d.Lookup("Years of experience", nil)
	assert.False(t, ok)
}

func TestChain_NoFallback(t *testing.T) {
	chain := NewChain(NewDirectLookup(testProfile(), nil), nil)

	_, err := chain.AnswerFreely(context.Background(), "Why us?")
	var na *NoAnswerProducedError
	assert.ErrorAs(t, err, &na)

	_, err = chain.AnswerFromOptions(context.Background(), "Pick", nil)
	assert.ErrorAs(t, err, &na)
}

func TestMatchChoice(t *testing.T) {
	choices := []string{"Yes", "No", "yes"}

	got, ok := MatchChoice("yes", choices)
	assert.True(t, ok)
	assert.Equal(t, "yes", got)

	got, ok = MatchChoice(" 'NO' ", choices)
	assert.True(t, ok)
	assert.Equal(t, "No", got)

	_, ok = MatchChoice("Maybe", choices)
	assert.False(t, ok)
}

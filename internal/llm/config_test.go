package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestGetModel_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		models map[ModelTier]string
		tier   ModelTier
		want   string
	}{
		{"own model", map[ModelTier]string{TierAdvanced: "big", TierStandard: "mid"}, TierAdvanced, "big"},
		{"falls back to standard", map[ModelTier]string{TierStandard: "mid", TierLite: "small"}, TierAdvanced, "mid"},
		{"falls back to lite", map[ModelTier]string{TierLite: "small"}, "unknown", "small"},
		{"empty name is unset", map[ModelTier]string{TierAdvanced: "", TierLite: "small"}, TierAdvanced, "small"},
		{"nothing configured", map[ModelTier]string{}, TierAdvanced, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Provider: ProviderGemini, Models: tt.models}
			assert.Equal(t, tt.want, c.GetModel(tt.tier))
		})
	}
}

func TestWithModel_LeavesOriginalAlone(t *testing.T) {
	base := DefaultConfig()
	custom := base.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", base.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", custom.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", custom.GetModel(TierLite))
	assert.Equal(t, base.Temperature, custom.Temperature)
	assert.Equal(t, base.Provider, custom.Provider)

	empty := (&Config{Provider: ProviderOpenAI}).WithModel(TierLite, "mini")
	assert.Equal(t, "mini", empty.GetModel(TierAdvanced))
}

func TestModelTierConstants(t *testing.T) {
	assert.Equal(t, ModelTier("lite"), TierLite)
	assert.Equal(t, ModelTier("standard"), TierStandard)
	assert.Equal(t, ModelTier("advanced"), TierAdvanced)
}

func TestProviderConstants(t *testing.T) {
	assert.Equal(t, Provider("gemini"), ProviderGemini)
	assert.Equal(t, Provider("vertex"), ProviderVertex)
	assert.Equal(t, Provider("openai"), ProviderOpenAI)
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{"", ProviderGemini, false},
		{"gemini", ProviderGemini, false},
		{"vertex", ProviderVertex, false},
		{"openai", ProviderOpenAI, false},
		{"anthropic", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProvider(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFor(t *testing.T) {
	assert.Equal(t, ProviderVertex, ConfigFor(ProviderVertex).Provider)
	assert.Equal(t, "gemini-2.5-flash", ConfigFor(ProviderVertex).GetModel(TierStandard))
	assert.Equal(t, "gpt-4o", ConfigFor(ProviderOpenAI).GetModel(TierStandard))
	assert.Equal(t, ProviderGemini, ConfigFor("").Provider)
}

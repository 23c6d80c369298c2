package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/jonathan/quick-apply/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validProfile = `
personal:
  name: Ada
  surname: Lovelace
  email: ada@example.com
  phone_prefix: "+44"
hard_skills: [Go]
`

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
data_dir: run
resume_path: resume.pdf
search:
  urls: ["https://www.linkedin.com/jobs/search/?keywords=go&f_AL=true"]
pacing:
  min_delay: 1s
  max_delay: 3s
direct_answers:
  Notice period: 2 weeks
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "run", cfg.DataDir)
	assert.Equal(t, filepath.Join("run", "chrome_profile"), cfg.Browser.ProfileDir)
	assert.Equal(t, 5, cfg.Search.MaxResultPages)
	assert.Equal(t, 3, cfg.Search.ListRetries)
	assert.Equal(t, time.Second, cfg.Pacing.MinDelay)
	assert.Equal(t, 3*time.Second, cfg.Pacing.MaxDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Pacing.SettleMin)
	assert.Equal(t, "skip", cfg.Policies.CardGroup)
	assert.Equal(t, "fail", cfg.Policies.CoverLetter)
	assert.Equal(t, "2 weeks", cfg.Answers["Notice period"])
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "empty")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := writeFile(t, t.TempDir(), "config.yaml", "search: [unclosed")
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config YAML")
}

func validConfig(t *testing.T) *AppConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := Default()
	cfg.DataDir = dir
	cfg.ResumePath = writeFile(t, dir, "resume.pdf", "%PDF")
	cfg.ProfilePath = writeFile(t, dir, "profile.yaml", validProfile)
	cfg.BlacklistPath = filepath.Join(dir, "blacklist.yaml")
	cfg.Search.URLs = []string{"https://www.linkedin.com/jobs/search/?keywords=go"}
	return &cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{"valid", func(c *AppConfig) {}, ""},
		{"no search urls", func(c *AppConfig) { c.Search.URLs = nil }, "URLs"},
		{"bad url", func(c *AppConfig) { c.Search.URLs = []string{"not a url"} }, "URLs"},
		{"max delay below min", func(c *AppConfig) { c.Pacing.MaxDelay = time.Second; c.Pacing.MinDelay = 2 * time.Second }, "MaxDelay"},
		{"unknown card policy", func(c *AppConfig) { c.Policies.CardGroup = "decompose" }, "CardGroup"},
		{"unknown provider", func(c *AppConfig) { c.LLM.Provider = "anthropic" }, "Provider"},
		{"missing resume", func(c *AppConfig) { c.ResumePath = filepath.Join(c.DataDir, "nope.pdf") }, "resume file not found"},
		{"upload without cover letter", func(c *AppConfig) { c.Policies.CoverLetter = "upload" }, "cover_letter_path"},
		{"empty direct answer label", func(c *AppConfig) { c.Answers = map[string]string{" ": "x"} }, "direct_answers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadSelectors_DefaultsAndOverlay(t *testing.T) {
	s, err := LoadSelectors("")
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/feed/", s.Session.FeedURL)
	assert.NotEmpty(t, s.Form.Labels)
	assert.Equal(t, "Select an option", s.Form.SelectPlaceholder)

	path := writeFile(t, t.TempDir(), "selectors.yaml", `
form:
  dialog: "#wizard"
  labels: [".question"]
`)
	s, err = LoadSelectors(path)
	require.NoError(t, err)
	assert.Equal(t, "#wizard", s.Form.Dialog)
	assert.Equal(t, []string{".question"}, s.Form.Labels)
	assert.Equal(t, "select", s.Form.Select)
}

func TestLoadSelectors_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "selectors.yaml", `
form:
  submit: ""
`)
	_, err := LoadSelectors(path)
	assert.ErrorContains(t, err, "invalid selectors")
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()

	p, err := LoadProfile(writeFile(t, dir, "ok.yaml", validProfile))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", p.Personal.FullName())
	assert.Equal(t, "+44", p.Personal.PhonePrefix)

	_, err = LoadProfile(writeFile(t, dir, "schema.yaml", "personal:\n  name: Ada\n"))
	assert.ErrorContains(t, err, "validation failed")

	_, err = LoadProfile(writeFile(t, dir, "email.yaml", "personal:\n  name: Ada\n  surname: L\n  email: not-an-email\n"))
	assert.ErrorContains(t, err, "Email")
}

func TestBlacklistSource_Refresh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blacklist.yaml")
	src := NewBlacklistSource(path)

	rule, err := src.Refresh()
	require.NoError(t, err)
	assert.Empty(t, rule.Companies)

	writeFile(t, dir, "blacklist.yaml", `
mode: whole_words
company: [" Acme ", acme, Initech]
title_keywords: [unity, "", senior manager]
`)
	rule, err = src.Refresh()
	require.NoError(t, err)
	assert.Equal(t, types.BlacklistWholeWords, rule.Mode)
	assert.Equal(t, []string{"Acme", "Initech"}, rule.Companies)
	assert.Equal(t, []string{"unity", "senior manager"}, rule.TitleKeywords)

	writeFile(t, dir, "blacklist.yaml", "mode: partial_words\ncompany: [Other]\n")
	kept, err := src.Refresh()
	assert.ErrorContains(t, err, "not supported")
	assert.Equal(t, []string{"Acme", "Initech"}, kept.Companies)
	assert.Equal(t, kept, src.Current())
}

func TestSecrets_EnvThenKeyring(t *testing.T) {
	keyring.MockInit()
	t.Setenv("SITE_EMAIL", "")
	t.Setenv("GEMINI_API_KEY", "env-key")

	require.NoError(t, SetSecret(SecretSiteEmail, "ada@example.com"))
	require.NoError(t, SetSecret(SecretGeminiAPIKey, "keychain-key"))

	s := LoadSecrets()
	assert.Equal(t, "ada@example.com", s.SiteEmail)
	assert.Equal(t, "env-key", s.GeminiAPIKey)
	assert.Equal(t, "env-key", s.APIKeyFor("gemini"))
	assert.Empty(t, s.SitePassword)

	require.NoError(t, DeleteSecret(SecretSiteEmail))
	require.NoError(t, DeleteSecret(SecretSiteEmail))
	assert.Empty(t, GetSecret(SecretSiteEmail))

	assert.ErrorContains(t, SetSecret("aws-key", "x"), "unknown secret")
	assert.ErrorContains(t, SetSecret(SecretSitePassword, "  "), "empty")
}

func TestBootstrap(t *testing.T) {
	keyring.MockInit()
	cfg := validConfig(t)
	writeFile(t, cfg.DataDir, "blacklist.yaml", "company: [Acme]\n")

	b, err := Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "Ada", b.Profile.Personal.Name)
	assert.NotNil(t, b.Selectors)
	assert.Equal(t, []string{"Acme"}, b.Blacklist.Current().Companies)
}

func TestBootstrap_FailsOnBadProfile(t *testing.T) {
	keyring.MockInit()
	cfg := validConfig(t)
	cfg.ProfilePath = writeFile(t, cfg.DataDir, "profile.yaml", "personal: {}\n")

	_, err := Bootstrap(context.Background(), cfg)
	assert.ErrorContains(t, err, "profile")
}

package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the agent's secrets in the OS keychain.
const KeyringService = "quick-apply"

// Secret names, also used as keychain account names.
const (
	SecretSiteEmail    = "site-email"
	SecretSitePassword = "site-password"
	SecretGeminiAPIKey = "gemini-api-key"
	SecretOpenAIAPIKey = "openai-api-key"
)

// secretEnv maps each secret to the environment variable that overrides the keychain.
var secretEnv = map[string]string{
	SecretSiteEmail:    "SITE_EMAIL",
	SecretSitePassword: "SITE_PASSWORD",
	SecretGeminiAPIKey: "GEMINI_API_KEY",
	SecretOpenAIAPIKey: "OPENAI_API_KEY",
}

// Secrets are credentials resolved once at startup.
type Secrets struct {
	SiteEmail    string
	SitePassword string
	GeminiAPIKey string
	OpenAIAPIKey string
}

// SecretNames lists the names accepted by SetSecret and DeleteSecret.
func SecretNames() []string {
	names := make([]string, 0, len(secretEnv))
	for name := range secretEnv {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadSecrets resolves every secret from the environment first, then the keychain.
// Missing secrets are left empty; callers decide which ones they need.
func LoadSecrets() Secrets {
	return Secrets{
		SiteEmail:    GetSecret(SecretSiteEmail),
		SitePassword: GetSecret(SecretSitePassword),
		GeminiAPIKey: GetSecret(SecretGeminiAPIKey),
		OpenAIAPIKey: GetSecret(SecretOpenAIAPIKey),
	}
}

// GetSecret returns the named secret or "" when it is not set anywhere.
func GetSecret(name string) string {
	if env, ok := secretEnv[name]; ok {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	v, err := keyring.Get(KeyringService, name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

// SetSecret stores a secret in the OS keychain.
func SetSecret(name, value string) error {
	if _, ok := secretEnv[name]; !ok {
		return fmt.Errorf("unknown secret %q (known: %s)", name, strings.Join(SecretNames(), ", "))
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	if err := keyring.Set(KeyringService, name, value); err != nil {
		return fmt.Errorf("failed to store %s in keychain: %w", name, err)
	}
	return nil
}

// DeleteSecret removes a secret from the OS keychain. Deleting a missing secret is not an error.
func DeleteSecret(name string) error {
	if _, ok := secretEnv[name]; !ok {
		return fmt.Errorf("unknown secret %q (known: %s)", name, strings.Join(SecretNames(), ", "))
	}
	if err := keyring.Delete(KeyringService, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from keychain: %w", name, err)
	}
	return nil
}

// APIKeyFor returns the API key the given LLM provider needs.
func (s Secrets) APIKeyFor(provider string) string {
	switch provider {
	case "openai":
		return s.OpenAIAPIKey
	default:
		return s.GeminiAPIKey
	}
}

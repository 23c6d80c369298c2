package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed selectors.yaml
var defaultSelectors []byte

// Selectors externalises every site-specific CSS selector the agent uses.
type Selectors struct {
	Session SessionSelectors `yaml:"session"`
	Search  SearchSelectors  `yaml:"search"`
	Form    FormSelectors    `yaml:"form"`
}

// SessionSelectors locate the login form.
type SessionSelectors struct {
	FeedURL       string `yaml:"feed_url" validate:"required,url"`
	SignInButton  string `yaml:"sign_in_button" validate:"required"`
	EmailField    string `yaml:"email_field"`
	PasswordField string `yaml:"password_field" validate:"required"`
}

// SearchSelectors locate listings on a search results page and in the detail pane.
type SearchSelectors struct {
	NoResults        string `yaml:"no_results"`
	ListItem         string `yaml:"list_item" validate:"required"`
	Title            string `yaml:"title" validate:"required"`
	Company          string `yaml:"company" validate:"required"`
	Location         string `yaml:"location"`
	Link             string `yaml:"link" validate:"required"`
	Footer           string `yaml:"footer"`
	AppliedText      string `yaml:"applied_text"`
	Description      string `yaml:"description" validate:"required"`
	HiringTeam       string `yaml:"hiring_team"`
	QuickApplyButton string `yaml:"quick_apply_button" validate:"required"`
	NextPage         string `yaml:"next_page"`
}

// FormSelectors locate the wizard, its fields and its controls.
type FormSelectors struct {
	Dialog            string   `yaml:"dialog" validate:"required"`
	Element           string   `yaml:"element" validate:"required"`
	Labels            []string `yaml:"labels" validate:"required,min=1,dive,required"`
	TextInput         string   `yaml:"text_input" validate:"required"`
	Select            string   `yaml:"select" validate:"required"`
	SelectPlaceholder string   `yaml:"select_placeholder"`
	Checkbox          string   `yaml:"checkbox" validate:"required"`
	Radio             string   `yaml:"radio" validate:"required"`
	FileInput         string   `yaml:"file_input" validate:"required"`
	CoverLetterHint   string   `yaml:"cover_letter_hint"`
	CardGroup         string   `yaml:"card_group"`
	Suggestions       string   `yaml:"suggestions"`
	SuggestionOption  string   `yaml:"suggestion_option"`
	PageError         string   `yaml:"page_error"`

	Next           string `yaml:"next" validate:"required"`
	Review         string `yaml:"review" validate:"required"`
	Submit         string `yaml:"submit" validate:"required"`
	Unfollow       string `yaml:"unfollow"`
	SuccessPopup   string `yaml:"success_popup" validate:"required"`
	SuccessDismiss string `yaml:"success_dismiss" validate:"required"`
	Close          string `yaml:"close" validate:"required"`
	SaveAlert      string `yaml:"save_alert" validate:"required"`
	Discard        string `yaml:"discard" validate:"required"`
}

// DefaultSelectors returns the built-in selector set.
func DefaultSelectors() (*Selectors, error) {
	var s Selectors
	if err := yaml.Unmarshal(defaultSelectors, &s); err != nil {
		return nil, fmt.Errorf("failed to parse built-in selectors: %w", err)
	}
	return &s, nil
}

// LoadSelectors returns the built-in selectors overlaid with the file at path, if any.
// Keys missing from the file keep their built-in value.
func LoadSelectors(path string) (*Selectors, error) {
	s, err := DefaultSelectors()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read selectors file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse selectors file %s: %w", path, err)
		}
	}

	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("invalid selectors: %w", err)
	}
	return s, nil
}

// Package config provides configuration loading and validation for the apply agent.
//
// Configuration has two lifetimes. The application config, profile, selectors and secrets are
// loaded once at startup. The blacklist is re-read on demand through BlacklistSource.Refresh.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// AppConfig is the load-once application configuration read from config.yaml.
type AppConfig struct {
	DataDir         string `yaml:"data_dir" validate:"required"`
	ProfilePath     string `yaml:"profile_path" validate:"required"`
	BlacklistPath   string `yaml:"blacklist_path"`
	SelectorsPath   string `yaml:"selectors_path"`
	PromptsPath     string `yaml:"prompts_path"`
	ResumePath      string `yaml:"resume_path" validate:"required"`
	CoverLetterPath string `yaml:"cover_letter_path"`
	DatabaseURL     string `yaml:"database_url"`
	Verbose         bool   `yaml:"verbose"`

	Search   SearchConfig      `yaml:"search"`
	Browser  BrowserConfig     `yaml:"browser"`
	Pacing   PacingConfig      `yaml:"pacing"`
	Policies PolicyConfig      `yaml:"policies"`
	LLM      LLMConfig         `yaml:"llm"`
	Answers  map[string]string `yaml:"direct_answers"`
}

// SearchConfig lists the search result URLs to work through.
type SearchConfig struct {
	URLs           []string `yaml:"urls" validate:"required,min=1,dive,url"`
	MaxResultPages int      `yaml:"max_result_pages" validate:"gte=1,lte=100"`
	ListRetries    int      `yaml:"list_retries" validate:"gte=1,lte=10"`
}

// BrowserConfig configures the Chrome session.
type BrowserConfig struct {
	ProfileDir    string        `yaml:"profile_dir"`
	Headless      bool          `yaml:"headless"`
	UserAgent     string        `yaml:"user_agent"`
	ActionTimeout time.Duration `yaml:"action_timeout" validate:"gte=0"`
	WaitTimeout   time.Duration `yaml:"wait_timeout" validate:"gte=0"`
	MaxFormPages  int           `yaml:"max_form_pages" validate:"gte=1,lte=50"`
}

// PacingConfig holds the randomized delays between site interactions.
type PacingConfig struct {
	MinDelay          time.Duration `yaml:"min_delay" validate:"gte=0"`
	MaxDelay          time.Duration `yaml:"max_delay" validate:"gtefield=MinDelay"`
	SettleMin         time.Duration `yaml:"settle_min" validate:"gte=0"`
	SettleMax         time.Duration `yaml:"settle_max" validate:"gtefield=SettleMin"`
	RequestsPerMinute float64       `yaml:"requests_per_minute" validate:"gte=0"`
}

// PolicyConfig decides how the form walker treats fields it cannot fill itself.
type PolicyConfig struct {
	CardGroup   string `yaml:"card_group" validate:"omitempty,oneof=skip fail"`
	CoverLetter string `yaml:"cover_letter" validate:"omitempty,oneof=fail skip upload"`
}

// LLMConfig selects the answering model.
type LLMConfig struct {
	Provider    string            `yaml:"provider" validate:"omitempty,oneof=gemini vertex openai"`
	Models      map[string]string `yaml:"models"`
	Temperature *float32          `yaml:"temperature" validate:"omitempty,gte=0,lte=2"`
	Project     string            `yaml:"project"`
	Location    string            `yaml:"location"`
}

// Default returns the configuration used for any value config.yaml leaves out.
func Default() AppConfig {
	return AppConfig{
		DataDir:       "data",
		ProfilePath:   "profile.yaml",
		BlacklistPath: "blacklist.yaml",
		Search: SearchConfig{
			MaxResultPages: 5,
			ListRetries:    3,
		},
		Browser: BrowserConfig{
			ActionTimeout: 15 * time.Second,
			WaitTimeout:   10 * time.Second,
			MaxFormPages:  15,
		},
		Pacing: PacingConfig{
			MinDelay:          2 * time.Second,
			MaxDelay:          4 * time.Second,
			SettleMin:         500 * time.Millisecond,
			SettleMax:         1500 * time.Millisecond,
			RequestsPerMinute: 20,
		},
		Policies: PolicyConfig{
			CardGroup:   "skip",
			CoverLetter: "fail",
		},
		LLM: LLMConfig{
			Provider: "gemini",
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*AppConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if cfg.Browser.ProfileDir == "" {
		cfg.Browser.ProfileDir = filepath.Join(cfg.DataDir, "chrome_profile")
	}

	return &cfg, nil
}

// Validate checks field constraints and that referenced files exist.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if _, err := os.Stat(c.ResumePath); err != nil {
		return fmt.Errorf("config error: resume file not found: %s", c.ResumePath)
	}
	if c.Policies.CoverLetter == "upload" {
		if c.CoverLetterPath == "" {
			return fmt.Errorf("config error: 'cover_letter_path' is required when cover letter policy is upload")
		}
		if _, err := os.Stat(c.CoverLetterPath); err != nil {
			return fmt.Errorf("config error: cover letter file not found: %s", c.CoverLetterPath)
		}
	}
	for label := range c.Answers {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("config error: 'direct_answers' has an empty label")
		}
	}

	return nil
}

// AbsPath resolves a configured path against the working directory.
// Chrome needs absolute paths for uploads.
func AbsPath(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

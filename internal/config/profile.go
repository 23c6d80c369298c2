package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/quick-apply/internal/schemas"
	"github.com/jonathan/quick-apply/internal/types"
)

// LoadProfile reads the applicant profile YAML, checks it against the profile schema and
// the struct constraints, and returns it.
func LoadProfile(path string) (*types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	if err := schemas.ValidateProfile(doc); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}

	var profile types.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	if err := validate.Struct(&profile); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}

	return &profile, nil
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/quick-apply/internal/types"
)

// blacklistFile is the on-disk shape of blacklist.yaml.
type blacklistFile struct {
	Mode          string   `yaml:"mode"`
	Company       []string `yaml:"company"`
	TitleKeywords []string `yaml:"title_keywords"`
}

// BlacklistSource is the hot-reloadable slice of configuration.
// Refresh re-reads the file; nothing else triggers a reload.
type BlacklistSource struct {
	path string

	mu      sync.Mutex
	current types.BlacklistRule
	loaded  bool
}

// NewBlacklistSource returns a source for path. An empty path means "no blacklist".
func NewBlacklistSource(path string) *BlacklistSource {
	return &BlacklistSource{path: path}
}

// Refresh re-reads the blacklist file and returns the new rule.
// A missing file yields an empty rule. On a parse or validation error the
// previously loaded rule stays current and is returned alongside the error.
func (s *BlacklistSource) Refresh() (types.BlacklistRule, error) {
	rule, err := readBlacklist(s.path)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.current, err
	}
	s.current = rule
	s.loaded = true
	return rule, nil
}

// Current returns the last successfully loaded rule.
func (s *BlacklistSource) Current() types.BlacklistRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func readBlacklist(path string) (types.BlacklistRule, error) {
	empty := types.BlacklistRule{Mode: types.BlacklistWholeWords}
	if path == "" {
		return empty, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("[APPLY] Warning: blacklist file %s not found, no listings will be excluded", path)
		return empty, nil
	}
	if err != nil {
		return empty, fmt.Errorf("failed to read blacklist file %s: %w", path, err)
	}

	var f blacklistFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return empty, fmt.Errorf("failed to parse blacklist file %s: %w", path, err)
	}

	mode, err := types.ParseBlacklistMode(f.Mode)
	if err != nil {
		return empty, fmt.Errorf("blacklist file %s: %w", path, err)
	}

	return types.BlacklistRule{
		Mode:          mode,
		Companies:     trimList(f.Company),
		TitleKeywords: trimList(f.TitleKeywords),
	}, nil
}

// trimList drops blanks and case-insensitive duplicates.
func trimList(xs []string) []string {
	seen := map[string]bool{}
	var ys []string
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		key := strings.ToLower(x)
		if seen[key] {
			continue
		}
		seen[key] = true
		ys = append(ys, x)
	}
	return ys
}

// Package prompts provides a loader for externalized LLM prompt sets.
// A prompt set is a system message, few-shot examples and a user template.
// The built-in sets are JSON files embedded at compile time; a file on disk can replace them.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/quick-apply/internal/llm"
)

//go:embed *.json
var promptFiles embed.FS

// Set is one few-shot chat prompt.
type Set struct {
	System   string        `json:"system"`
	Examples []llm.Example `json:"examples"`
	User     string        `json:"user"`
}

// Request renders the user template with data and returns a ready-to-send request.
func (s Set) Request(data map[string]string) llm.Request {
	return llm.Request{
		System:   s.System,
		Examples: s.Examples,
		User:     Format(s.User, data),
	}
}

// cache stores parsed prompt files to avoid repeated JSON parsing
var (
	cache   = make(map[string]map[string]Set)
	cacheMu sync.RWMutex
)

// Get retrieves a prompt set by filename and key.
// The filename should not include the path (e.g., "answering.json").
func Get(filename, key string) (Set, error) {
	sets, err := loadFile(filename)
	if err != nil {
		return Set{}, err
	}

	set, exists := sets[key]
	if !exists {
		return Set{}, fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	if set.User == "" {
		return Set{}, fmt.Errorf("prompt %q in %s has no user template", key, filename)
	}

	return set, nil
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// Override replaces an embedded prompt file with one read from disk.
// The override is keyed by the file's base name.
func Override(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}
	sets, err := parse(path, data)
	if err != nil {
		return err
	}

	cacheMu.Lock()
	cache[filepath.Base(path)] = sets
	cacheMu.Unlock()
	return nil
}

// loadFile loads and caches a prompt file.
func loadFile(filename string) (map[string]Set, error) {
	cacheMu.RLock()
	if sets, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return sets, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	sets, err := parse(filename, data)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	cache[filename] = sets
	cacheMu.Unlock()

	return sets, nil
}

func parse(name string, data []byte) (map[string]Set, error) {
	var sets map[string]Set
	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
	}
	return sets, nil
}

// ClearCache clears the prompt cache, dropping any overrides. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]Set)
	cacheMu.Unlock()
}

// List returns all available prompt keys in a file, sorted.
func List(filename string) ([]string, error) {
	sets, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(sets))
	for key := range sets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

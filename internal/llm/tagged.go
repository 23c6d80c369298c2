package llm

import "strings"

// ExtractTagged returns the text after the last occurrence of tag, trimmed.
// ok is false when the tag is absent.
func ExtractTagged(response, tag string) (string, bool) {
	idx := strings.LastIndex(response, tag)
	if idx == -1 {
		return "", false
	}
	return strings.TrimSpace(response[idx+len(tag):]), true
}

// ContainsSentinel reports whether the response carries the "no data" marker anywhere.
func ContainsSentinel(response, sentinel string) bool {
	return sentinel != "" && strings.Contains(response, sentinel)
}

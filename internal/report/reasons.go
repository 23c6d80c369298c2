package report

import (
	"cmp"
	"maps"
	"slices"
)

// sortedReasons orders failure reasons by count, most frequent first, then alphabetically.
func sortedReasons(reasons map[string]int) []string {
	keys := slices.Collect(maps.Keys(reasons))
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(reasons[b], reasons[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys
}

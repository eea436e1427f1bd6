package sentences

import (
	"strings"

	"github.com/verte-zerg/drill/internal/align"
	"github.com/verte-zerg/drill/internal/drill"
)

// FilterFunc returns true when a sentence should be kept.
type FilterFunc func(*drill.DictationItem) bool

// MaxWords keeps sentences with at most n words. A non-positive n keeps all.
func MaxWords(n int) FilterFunc {
	return func(it *drill.DictationItem) bool {
		return n <= 0 || len(align.Tokens(it.Words)) <= n
	}
}

// Containing keeps sentences that use at least one of words, compared after
// normalization. An empty list keeps all.
func Containing(words []string) FilterFunc {
	want := map[string]struct{}{}
	for _, w := range words {
		if n := align.Normalize(strings.TrimSpace(w)); n != "" {
			want[n] = struct{}{}
		}
	}
	return func(it *drill.DictationItem) bool {
		if len(want) == 0 {
			return true
		}
		for _, tok := range align.Tokens(it.Words) {
			if _, ok := want[tok]; ok {
				return true
			}
		}
		return false
	}
}

// Filter returns the items accepted by every filter.
func Filter(items []*drill.DictationItem, filters ...FilterFunc) []*drill.DictationItem {
	var out []*drill.DictationItem
next:
	for _, it := range items {
		for _, f := range filters {
			if !f(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

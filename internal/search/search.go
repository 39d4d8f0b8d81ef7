// Package search matches user typed section titles against the server's sections.
package search

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"
)

// maxSuggestions caps the "did you mean" list
const maxSuggestions = 3

// FindSection returns the index of the title query names, or -1 when nothing
// matches. A case-insensitive exact match wins; otherwise the closest fuzzy
// match does, ties going to the earlier title.
func FindSection(query string, titles []string) int {
	query = strings.TrimSpace(query)
	if query == "" {
		return -1
	}

	for i, title := range titles {
		if strings.EqualFold(title, query) {
			return i
		}
	}

	ranks := lfuzzy.RankFindFold(query, titles)
	if len(ranks) == 0 {
		return -1
	}
	sort.SliceStable(ranks, func(a, b int) bool {
		if ranks[a].Distance != ranks[b].Distance {
			return ranks[a].Distance < ranks[b].Distance
		}
		return ranks[a].OriginalIndex < ranks[b].OriginalIndex
	})
	return ranks[0].OriginalIndex
}

// Suggest returns up to three titles resembling query, best first.
func Suggest(query string, titles []string) []string {
	query = strings.TrimSpace(query)
	if query == "" || len(titles) == 0 {
		return nil
	}

	lowerTitles := make([]string, len(titles))
	for i, t := range titles {
		lowerTitles[i] = strings.ToLower(t)
	}

	matches := fuzzy.Find(strings.ToLower(query), lowerTitles)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	suggestions := make([]string, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, titles[m.Index])
	}
	return suggestions
}

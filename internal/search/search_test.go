package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindSection(t *testing.T) {
	t.Parallel()

	titles := []string{"Movies", "Movies 4K", "TV Shows", "Anime"}

	cases := map[string]struct {
		query string
		want  int
	}{
		"exact":             {query: "Movies", want: 0},
		"case insensitive":  {query: "tv shows", want: 2},
		"exact beats fuzzy": {query: "movies 4k", want: 1},
		"fuzzy subsequence": {query: "tvsh", want: 2},
		"closest fuzzy":     {query: "mov", want: 0},
		"surrounding space": {query: "  Anime ", want: 3},
		"no match":          {query: "music", want: -1},
		"empty":             {query: "", want: -1},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := FindSection(tc.query, titles); got != tc.want {
				t.Fatalf("FindSection(%q) = %d, want %d", tc.query, got, tc.want)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	titles := []string{"Movies", "Kids Movies", "TV Shows", "Movies 4K", "Documentaries"}

	got := Suggest("mvs", titles)
	if len(got) == 0 || len(got) > maxSuggestions {
		t.Fatalf("Suggest returned %d titles: %v", len(got), got)
	}
	for _, title := range got {
		if title == "TV Shows" || title == "Documentaries" {
			t.Fatalf("unexpected suggestion %q in %v", title, got)
		}
	}

	if diff := cmp.Diff([]string(nil), Suggest("", titles)); diff != "" {
		t.Fatalf("empty query mismatch (-want +got):\n%s", diff)
	}
	if got := Suggest("zzz", titles); len(got) != 0 {
		t.Fatalf("Suggest(zzz) = %v, want none", got)
	}
}

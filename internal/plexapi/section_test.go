package plexapi

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jplandry908/PlexTraktSync/internal/domain"
)

func itemKeys(t *testing.T, items []*LibraryItem) []string {
	t.Helper()
	keys := make([]string, 0, len(items))
	for _, item := range items {
		provider, err := item.Provider()
		if err != nil {
			t.Fatalf("Provider for %s: %v", item, err)
		}
		id, err := item.ID()
		if err != nil {
			t.Fatalf("ID for %s: %v", item, err)
		}
		keys = append(keys, provider+":"+id)
	}
	return keys
}

func TestLibrarySectionItemsFilters(t *testing.T) {
	t.Parallel()

	section := &stubSection{
		title: "Movies",
		kind:  KindMovie,
		entries: []domain.Entry{
			movie("tt0112253"),
			movie("local://1"),
			movie("com.plexapp.agents.none://2"),
			movie("com.plexapp.agents.themoviedb://603?lang=en"),
			movie("com.plexapp.agents.youtube://abc"),
			movie("com.plexapp.agents.xbmcnfo://77"),
			movie("garbage"),
			movie("plex://movie/5d7", "tvdb://121361"),
			movie("agents.none://3"),
		},
	}
	logger, logs := captureLogger()
	s := NewLibrarySection(section, nil, logger)

	items, err := s.Items(context.Background())
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}

	want := []string{"imdb:tt0112253", "tmdb:603", "tvdb:121361"}
	if diff := cmp.Diff(want, itemKeys(t, items)); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	out := logs.String()
	if got := strings.Count(out, "level=ERROR"); got != 3 {
		t.Fatalf("expected 3 error logs (youtube, xbmcnfo, garbage), got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "com.plexapp.agents.youtube://abc") {
		t.Fatalf("error log should name the offending guid:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "level=ERROR") && (strings.Contains(line, "local://") || strings.Contains(line, "none://")) {
			t.Fatalf("ignorable provider logged at error level: %s", line)
		}
	}
}

func TestLibrarySectionItemsCached(t *testing.T) {
	t.Parallel()

	section := &stubSection{title: "Movies", kind: KindMovie, entries: []domain.Entry{movie("imdb://tt1")}}
	s := NewLibrarySection(section, nil, nil)
	ctx := context.Background()

	first, err := s.Items(ctx)
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}
	second, err := s.Items(ctx)
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}

	if section.calls != 1 {
		t.Fatalf("section listed %d times, want 1", section.calls)
	}
	if diff := cmp.Diff(itemKeys(t, first), itemKeys(t, second)); diff != "" {
		t.Fatalf("Items not idempotent (-first +second):\n%s", diff)
	}
	if &first[0] != &second[0] {
		t.Fatal("Items should return the same cached list")
	}

	s.Invalidate()
	if _, err := s.Items(ctx); err != nil {
		t.Fatalf("Items returned error: %v", err)
	}
	if section.calls != 2 {
		t.Fatalf("section listed %d times after Invalidate, want 2", section.calls)
	}
}

func TestLibrarySectionAllIsNotCached(t *testing.T) {
	t.Parallel()

	section := &stubSection{title: "Shows", kind: KindShow}
	s := NewLibrarySection(section, nil, nil)
	for i := 0; i < 3; i++ {
		if _, err := s.All(context.Background()); err != nil {
			t.Fatalf("All returned error: %v", err)
		}
	}
	if section.calls != 3 {
		t.Fatalf("section listed %d times, want 3", section.calls)
	}
}

func TestLibrarySectionListError(t *testing.T) {
	t.Parallel()

	section := &stubSection{title: "Movies", kind: KindMovie, err: domain.ErrServerOffline}
	s := NewLibrarySection(section, nil, nil)

	if _, err := s.Items(context.Background()); !errors.Is(err, domain.ErrServerOffline) {
		t.Fatalf("Items error = %v, want ErrServerOffline", err)
	}

	section.err = nil
	section.entries = []domain.Entry{movie("imdb://tt1")}
	n, err := s.Len(context.Background())
	if err != nil {
		t.Fatalf("Len returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("Len = %d, want 1", n)
	}
}

func TestLibrarySectionLenCountsFilteredItems(t *testing.T) {
	t.Parallel()

	section := &stubSection{
		title:   "Movies",
		kind:    KindMovie,
		entries: []domain.Entry{movie("imdb://tt1"), movie("local://2"), movie("tmdb://3")},
	}
	s := NewLibrarySection(section, nil, nil)
	n, err := s.Len(context.Background())
	if err != nil {
		t.Fatalf("Len returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("Len = %d, want 2", n)
	}
	if s.Title() != "Movies" || s.Kind() != KindMovie {
		t.Fatalf("Title/Kind = %q/%q", s.Title(), s.Kind())
	}
}

func TestProviderSets(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"imdb", "tmdb", "tvdb"} {
		if !IsCanonicalProvider(p) {
			t.Errorf("%s should be canonical", p)
		}
	}
	for _, p := range []string{"local", "none", "agents.none"} {
		if !IsIgnoredProvider(p) || IsCanonicalProvider(p) {
			t.Errorf("%s should be ignored and not canonical", p)
		}
	}
}

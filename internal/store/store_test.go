package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jplandry908/PlexTraktSync/internal/domain"
	"github.com/jplandry908/PlexTraktSync/internal/plexapi"
)

func openStores(t *testing.T) map[string]*IndexStore {
	t.Helper()

	disk, err := NewIndexStore(t.TempDir(), "http://plex.local:32400")
	if err != nil {
		t.Fatalf("NewIndexStore returned error: %v", err)
	}
	t.Cleanup(func() { disk.Close() })

	memory, err := NewIndexStore("", "")
	if err != nil {
		t.Fatalf("NewIndexStore returned error: %v", err)
	}
	return map[string]*IndexStore{"bolt": disk, "memory": memory}
}

func intPtr(v int) *int { return &v }

func TestSaveAndGetSection(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			records := []Record{
				{RatingKey: "2", MediaType: "movie", GUID: "tmdb://603", Provider: "tmdb", ID: "603", Rating: intPtr(8)},
				{RatingKey: "1", MediaType: "movie", GUID: "tt0112253", Provider: "imdb", ID: "tt0112253"},
			}
			if err := s.SaveSection("Movies", records); err != nil {
				t.Fatalf("SaveSection returned error: %v", err)
			}

			got, ok := s.GetSection("Movies")
			if !ok {
				t.Fatal("GetSection found nothing")
			}
			want := []Record{
				{Section: "Movies", RatingKey: "1", MediaType: "movie", GUID: "tt0112253", Provider: "imdb", ID: "tt0112253"},
				{Section: "Movies", RatingKey: "2", MediaType: "movie", GUID: "tmdb://603", Provider: "tmdb", ID: "603", Rating: intPtr(8)},
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("section mismatch (-want +got):\n%s", diff)
			}

			r, ok := s.Lookup("tmdb", "603")
			if !ok || r.RatingKey != "2" {
				t.Fatalf("Lookup = %+v, %v", r, ok)
			}
			if _, ok := s.GetSection("TV Shows"); ok {
				t.Fatal("unexpected records for unknown section")
			}
		})
	}
}

func TestSaveSectionReplacesStaleRecords(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveSection("Movies", []Record{{RatingKey: "1", Provider: "imdb", ID: "tt1"}}); err != nil {
				t.Fatalf("SaveSection returned error: %v", err)
			}
			if err := s.SaveSection("Movies", []Record{{RatingKey: "2", Provider: "tmdb", ID: "2"}}); err != nil {
				t.Fatalf("SaveSection returned error: %v", err)
			}

			if _, ok := s.Lookup("imdb", "tt1"); ok {
				t.Fatal("stale provider entry survived SaveSection")
			}
			got, _ := s.GetSection("Movies")
			if len(got) != 1 || got[0].RatingKey != "2" {
				t.Fatalf("GetSection = %+v", got)
			}
		})
	}
}

func TestInvalidateSectionKeepsOtherSections(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			s.SaveSection("Movies", []Record{{RatingKey: "1", Provider: "imdb", ID: "tt1"}})
			s.SaveSection("Movies 4K", []Record{{RatingKey: "9", Provider: "tmdb", ID: "9"}})

			s.InvalidateSection("Movies")

			if _, ok := s.GetSection("Movies"); ok {
				t.Fatal("Movies should be empty")
			}
			if _, ok := s.Lookup("tmdb", "9"); !ok {
				t.Fatal("Movies 4K lookup should survive")
			}

			s.InvalidateAll()
			if _, ok := s.Lookup("tmdb", "9"); ok {
				t.Fatal("InvalidateAll left a lookup behind")
			}
		})
	}
}

func TestIndexPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewIndexStore(dir, "http://plex.local:32400/")
	if err != nil {
		t.Fatalf("NewIndexStore returned error: %v", err)
	}
	if err := s.SaveSection("Movies", []Record{{RatingKey: "1", Provider: "imdb", ID: "tt1"}}); err != nil {
		t.Fatalf("SaveSection returned error: %v", err)
	}
	s.Close()

	reopened, err := NewIndexStore(dir, "HTTP://plex.local:32400")
	if err != nil {
		t.Fatalf("NewIndexStore returned error: %v", err)
	}
	defer reopened.Close()

	if r, ok := reopened.Lookup("imdb", "tt1"); !ok || r.Section != "Movies" {
		t.Fatalf("Lookup after reopen = %+v, %v", r, ok)
	}
}

type fakeEntry struct {
	guid     string
	rating   float64
	viewedAt time.Time
}

func (e fakeEntry) GUID() string    { return e.guid }
func (e fakeEntry) GUIDs() []string { return nil }
func (e fakeEntry) Type() string    { return "movie" }
func (e fakeEntry) Duration() int64 { return 1 }
func (e fakeEntry) RatingKey() string {
	return "55"
}
func (e fakeEntry) UserRating() (float64, bool)         { return e.rating, e.rating > 0 }
func (e fakeEntry) LastViewedAt() (time.Time, bool)     { return e.viewedAt, !e.viewedAt.IsZero() }
func (e fakeEntry) Rate(context.Context, float64) error { return nil }
func (e fakeEntry) MarkWatched(context.Context) error   { return nil }

func TestRecordFromItem(t *testing.T) {
	seen := time.Date(2022, 5, 6, 7, 8, 9, 0, time.UTC)
	item := plexapi.NewLibraryItem(fakeEntry{guid: "com.plexapp.agents.themoviedb://603?lang=en", rating: 9.5, viewedAt: seen}, nil)

	got, err := RecordFromItem("Movies", item)
	if err != nil {
		t.Fatalf("RecordFromItem returned error: %v", err)
	}
	want := Record{
		Section:   "Movies",
		RatingKey: "55",
		MediaType: "movie",
		GUID:      "com.plexapp.agents.themoviedb://603?lang=en",
		Provider:  "tmdb",
		ID:        "603",
		Rating:    intPtr(9),
		SeenAt:    &seen,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	if _, err := RecordFromItem("Movies", plexapi.NewLibraryItem(fakeEntry{guid: "broken"}, nil)); !errors.Is(err, domain.ErrMalformedGUID) {
		t.Fatalf("RecordFromItem error = %v, want ErrMalformedGUID", err)
	}
}

package plexapi

import (
	"context"
	"log/slog"
	"slices"

	"github.com/jplandry908/PlexTraktSync/internal/domain"
	"github.com/jplandry908/PlexTraktSync/internal/memo"
)

// CanonicalProviders are the providers a sync target can match against.
var CanonicalProviders = []string{"imdb", "tmdb", "tvdb"}

// ignoredProviders mark content deliberately left unmatched (home videos, local media).
var ignoredProviders = []string{"local", "none", "agents.none"}

// LibrarySection lists the uniquely identifiable items of one library section.
type LibrarySection struct {
	section   domain.Section
	overrides ProviderOverrides
	logger    *slog.Logger
	cache     *memo.Cache
}

// NewLibrarySection wraps section. Items are resolved with overrides.
func NewLibrarySection(section domain.Section, overrides ProviderOverrides, logger *slog.Logger) *LibrarySection {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibrarySection{
		section:   section,
		overrides: overrides,
		logger:    logger,
		cache:     memo.New(),
	}
}

// Title returns the section title.
func (s *LibrarySection) Title() string {
	return s.section.Title()
}

// Kind returns the section type, "movie" or "show".
func (s *LibrarySection) Kind() string {
	return s.section.Type()
}

// All returns the section's raw entries. It queries the server on every call.
func (s *LibrarySection) All(ctx context.Context) ([]domain.Entry, error) {
	return s.section.All(ctx)
}

// Items returns the section's items that resolve to a canonical provider, in
// server order. Items that cannot be resolved are logged and skipped so one bad
// entry does not fail the section. The list is computed once per section.
func (s *LibrarySection) Items(ctx context.Context) ([]*LibraryItem, error) {
	return memo.Get(s.cache, "items", func() ([]*LibraryItem, error) {
		entries, err := s.All(ctx)
		if err != nil {
			return nil, err
		}

		result := make([]*LibraryItem, 0, len(entries))
		for _, entry := range entries {
			item := NewLibraryItem(entry, s.overrides)
			provider, err := item.Provider()
			if err != nil {
				s.logger.Error("skipping item", "item", item.String(), "section", s.Title(), "error", err)
				continue
			}

			if IsIgnoredProvider(provider) {
				s.logger.Debug("ignoring unmatched item", "item", item.String(), "provider", provider)
				continue
			}

			if !IsCanonicalProvider(provider) {
				s.logger.Error("unable to parse a valid provider",
					"item", item.String(),
					"guid", item.GUID(),
					"guids", item.GUIDs())
				continue
			}

			result = append(result, item)
		}

		s.logger.Debug("resolved section items", "section", s.Title(), "total", len(entries), "usable", len(result))
		return result, nil
	})
}

// Len returns the number of usable items, after filtering.
func (s *LibrarySection) Len(ctx context.Context) (int, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Invalidate forgets the resolved item list so the next Items call re-lists the section.
func (s *LibrarySection) Invalidate() {
	s.cache.Clear("items")
}

// IsIgnoredProvider reports whether provider marks deliberately unmatched content.
func IsIgnoredProvider(provider string) bool {
	return slices.Contains(ignoredProviders, provider)
}

// IsCanonicalProvider reports whether provider is one of CanonicalProviders.
func IsCanonicalProvider(provider string) bool {
	return slices.Contains(CanonicalProviders, provider)
}

// Package plexapi resolves Plex catalog entries to canonical provider ids and
// caches library lookups for the duration of a sync pass.
package plexapi

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jplandry908/PlexTraktSync/internal/domain"
	"github.com/jplandry908/PlexTraktSync/internal/memo"
)

const (
	KindMovie = "movie"
	KindShow  = "show"
)

const opFetchItem = "fetch_item"

// Options configures an API.
type Options struct {
	// ExcludedLibraries lists section titles that are never synced
	ExcludedLibraries []string

	// ProviderOverrides resolves items scraped by the XBMC nfo agent
	ProviderOverrides ProviderOverrides
}

// API is the catalog facade used by the sync engine. It hides the media
// server's library behind memoized section and item lookups.
type API struct {
	library domain.Library
	opts    Options
	logger  *slog.Logger
	cache   *memo.Cache
}

// New creates an API over library
func New(library domain.Library, opts Options, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		library: library,
		opts:    opts,
		logger:  logger,
		cache:   memo.New(),
	}
}

// LibrarySections returns the server's sections minus the excluded ones.
// It always asks the server.
func (a *API) LibrarySections(ctx context.Context) ([]domain.Section, error) {
	sections, err := a.library.Sections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list library sections: %w", err)
	}

	result := make([]domain.Section, 0, len(sections))
	for _, section := range sections {
		if slices.Contains(a.opts.ExcludedLibraries, section.Title()) {
			a.logger.Debug("skipping excluded library", "title", section.Title())
			continue
		}
		result = append(result, section)
	}
	return result, nil
}

// MovieSections returns the movie sections.
func (a *API) MovieSections(ctx context.Context) ([]*LibrarySection, error) {
	return memo.Get(a.cache, "movie_sections", func() ([]*LibrarySection, error) {
		return a.sectionsOfKind(ctx, KindMovie)
	})
}

// ShowSections returns the TV show sections.
func (a *API) ShowSections(ctx context.Context) ([]*LibrarySection, error) {
	return memo.Get(a.cache, "show_sections", func() ([]*LibrarySection, error) {
		return a.sectionsOfKind(ctx, KindShow)
	})
}

func (a *API) sectionsOfKind(ctx context.Context, kind string) ([]*LibrarySection, error) {
	sections, err := a.LibrarySections(ctx)
	if err != nil {
		return nil, err
	}

	var result []*LibrarySection
	for _, section := range sections {
		if section.Type() != kind {
			continue
		}
		result = append(result, NewLibrarySection(section, a.opts.ProviderOverrides, a.logger))
	}
	return result, nil
}

// FetchItem returns the item with the given rating key. Items are cached per key
// until ReloadItem or Invalidate.
func (a *API) FetchItem(ctx context.Context, key string) (*LibraryItem, error) {
	return memo.Get(a.cache, opFetchItem, func() (*LibraryItem, error) {
		entry, err := a.library.FetchItem(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch item %s: %w", key, err)
		}
		return NewLibraryItem(entry, a.opts.ProviderOverrides), nil
	}, key)
}

// ReloadItem fetches item again from the server. Every cached FetchItem result
// is dropped, not only this item's.
func (a *API) ReloadItem(ctx context.Context, item *LibraryItem) (*LibraryItem, error) {
	a.cache.Clear(opFetchItem)
	return a.FetchItem(ctx, item.Entry().RatingKey())
}

// Rate sets the user rating of item on the server.
func (a *API) Rate(ctx context.Context, item *LibraryItem, rating float64) error {
	if err := item.Entry().Rate(ctx, rating); err != nil {
		return fmt.Errorf("rate %s: %w", item, err)
	}
	return nil
}

// MarkWatched marks item as watched on the server.
func (a *API) MarkWatched(ctx context.Context, item *LibraryItem) error {
	if err := item.Entry().MarkWatched(ctx); err != nil {
		return fmt.Errorf("mark watched %s: %w", item, err)
	}
	return nil
}

// Invalidate drops every cached section list and item.
func (a *API) Invalidate() {
	a.cache.ClearAll()
}

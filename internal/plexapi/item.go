package plexapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/jplandry908/PlexTraktSync/internal/domain"
	"github.com/jplandry908/PlexTraktSync/internal/memo"
)

const (
	// plexScheme marks guids the server already resolved to its own aggregate agent
	plexScheme = "plex://"

	// xbmcProvider is the scheme token of the XBMC nfo agent, which carries no provider of its own
	xbmcProvider = "xbmcnfo"

	schemeSep = "://"
)

// agentNormalizer strips legacy agent namespaces and renames long-form providers.
var agentNormalizer = strings.NewReplacer(
	"com.plexapp.agents.", "",
	"tv.plex.agents.", "",
	"themoviedb", "tmdb",
	"thetvdb", "tvdb",
)

// ProviderOverrides maps a pluralized media type ("movies", "shows") to the
// provider assumed for XBMC nfo scraped items of that type.
type ProviderOverrides map[string]string

// LibraryItem resolves the canonical provider and id of one catalog entry.
// Derived values are computed on first access and kept for the lifetime of
// the item; build a new item (see API.ReloadItem) to observe a changed entry.
type LibraryItem struct {
	entry     domain.Entry
	overrides ProviderOverrides
	cache     *memo.Cache
}

// NewLibraryItem wraps entry. overrides may be nil.
func NewLibraryItem(entry domain.Entry, overrides ProviderOverrides) *LibraryItem {
	return &LibraryItem{
		entry:     entry,
		overrides: overrides,
		cache:     memo.New(),
	}
}

// Entry returns the wrapped catalog entry.
func (i *LibraryItem) Entry() domain.Entry {
	return i.entry
}

// GUID returns the effective guid. Items matched by the new Plex agent carry a
// plex:// guid; their first alternate guid holds the external id instead.
func (i *LibraryItem) GUID() string {
	return memo.Value(i.cache, "guid", func() string {
		guid := i.entry.GUID()
		if strings.HasPrefix(guid, plexScheme) {
			if guids := i.GUIDs(); len(guids) > 0 {
				return guids[0]
			}
		}
		return guid
	})
}

// GUIDs returns the entry's alternate guids.
func (i *LibraryItem) GUIDs() []string {
	return memo.Value(i.cache, "guids", i.entry.GUIDs)
}

// MediaType returns the entry kind, "movie" or "show".
func (i *LibraryItem) MediaType() string {
	return memo.Value(i.cache, "media_type", i.entry.Type)
}

// Type returns the pluralized media type, the key used by ProviderOverrides.
func (i *LibraryItem) Type() string {
	return memo.Value(i.cache, "type", func() string {
		return i.MediaType() + "s"
	})
}

// GUIDIsIMDBLegacy reports whether the raw guid is a bare imdb id like "tt0112253",
// as written by agents that predate scheme qualified guids.
func (i *LibraryItem) GUIDIsIMDBLegacy() bool {
	return memo.Value(i.cache, "guid_is_imdb_legacy", func() bool {
		return isIMDBLegacy(i.entry.GUID())
	})
}

// Provider returns the metadata provider of the item: "imdb", "tmdb", "tvdb" or
// whatever scheme the guid names. The result is not checked against a whitelist.
func (i *LibraryItem) Provider() (string, error) {
	return memo.Get(i.cache, "provider", func() (string, error) {
		if i.GUIDIsIMDBLegacy() {
			return "imdb", nil
		}

		guid := i.GUID()
		scheme, _, ok := strings.Cut(guid, schemeSep)
		if !ok {
			return "", fmt.Errorf("%w: %q", domain.ErrMalformedGUID, guid)
		}

		provider := agentNormalizer.Replace(scheme)
		if provider == xbmcProvider {
			override, ok := i.overrides[i.Type()]
			if !ok || override == "" {
				return "", fmt.Errorf("%w: no xbmc provider configured for %s", domain.ErrProviderNotFound, i.Type())
			}
			provider = override
		}
		return provider, nil
	})
}

// ID returns the provider scoped id, without any query string the agent appended.
func (i *LibraryItem) ID() (string, error) {
	return memo.Get(i.cache, "id", func() (string, error) {
		if i.GUIDIsIMDBLegacy() {
			return i.entry.GUID(), nil
		}

		guid := i.GUID()
		_, rest, ok := strings.Cut(guid, schemeSep)
		if !ok {
			return "", fmt.Errorf("%w: %q", domain.ErrMalformedGUID, guid)
		}
		id, _, _ := strings.Cut(rest, "?")
		return id, nil
	})
}

type rating struct {
	value int
	set   bool
}

// Rating returns the user rating truncated to an integer, and false if unrated.
func (i *LibraryItem) Rating() (int, bool) {
	r := memo.Value(i.cache, "rating", func() rating {
		v, ok := i.entry.UserRating()
		if !ok {
			return rating{}
		}
		return rating{value: int(v), set: true}
	})
	return r.value, r.set
}

// SeenDate returns when the item was last watched, in UTC.
func (i *LibraryItem) SeenDate() (time.Time, error) {
	return memo.Get(i.cache, "seen_date", func() (time.Time, error) {
		at, ok := i.entry.LastViewedAt()
		if !ok || at.IsZero() {
			return time.Time{}, domain.ErrNotWatched
		}
		return at.UTC(), nil
	})
}

// WatchProgress returns viewOffset as a percentage of the item's duration.
// Both values are in milliseconds. The duration must be non-zero.
func (i *LibraryItem) WatchProgress(viewOffset int64) float64 {
	return float64(viewOffset) / float64(i.entry.Duration()) * 100
}

func (i *LibraryItem) String() string {
	provider, err := i.Provider()
	if err != nil {
		provider = "?"
	}
	id, err := i.ID()
	if err != nil {
		id = "?"
	}
	return fmt.Sprintf("<%s:%s:%s>", provider, id, i.entry.RatingKey())
}

func isIMDBLegacy(guid string) bool {
	if len(guid) <= 2 || guid[:2] != "tt" {
		return false
	}
	for _, r := range guid[2:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

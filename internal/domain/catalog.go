package domain

import (
	"context"
	"time"
)

// Entry is one raw catalog item (movie or show) as exposed by the media server.
// Implementations are owned by the server client; resolvers only read from them
// and delegate mutations back through Rate and MarkWatched.
type Entry interface {
	// GUID returns the primary identifier, e.g. "plex://movie/5d77..." or "tt0112253"
	GUID() string

	// GUIDs returns the alternate identifiers in server order, e.g. "imdb://tt0112253"
	GUIDs() []string

	// Type returns the media kind tag: "movie" or "show"
	Type() string

	// UserRating returns the user's rating and whether one is set
	UserRating() (float64, bool)

	// LastViewedAt returns the last watched time and whether one is set
	LastViewedAt() (time.Time, bool)

	// Duration returns the playback duration in milliseconds
	Duration() int64

	// RatingKey returns the stable key used to re-fetch this entry
	RatingKey() string

	Rate(ctx context.Context, rating float64) error
	MarkWatched(ctx context.Context) error
}

// Section is one library section of the catalog.
type Section interface {
	Title() string

	// Type returns the section kind: "movie", "show", "artist", "photo"
	Type() string

	// All lists the section's entries as they are on the server right now
	All(ctx context.Context) ([]Entry, error)
}

// Library is the catalog-level entry point of a media server.
type Library interface {
	Sections(ctx context.Context) ([]Section, error)
	FetchItem(ctx context.Context, key string) (Entry, error)
}

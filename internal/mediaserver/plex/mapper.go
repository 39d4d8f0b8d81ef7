package plex

import (
	"context"
	"time"

	"github.com/jplandry908/PlexTraktSync/internal/domain"
)

var (
	_ domain.Library = (*Client)(nil)
	_ domain.Section = (*Section)(nil)
	_ domain.Entry   = (*Item)(nil)
)

// Section implements domain.Section for one Plex library directory
type Section struct {
	client *Client
	dir    Directory
}

func (s *Section) Title() string { return s.dir.Title }
func (s *Section) Type() string  { return s.dir.Type }
func (s *Section) Key() string   { return s.dir.Key }

// All returns every item in the section, following pagination
func (s *Section) All(ctx context.Context) ([]domain.Entry, error) {
	metadata, err := s.client.sectionItems(ctx, s.dir.Key)
	if err != nil {
		return nil, err
	}
	return MapEntries(s.client, metadata), nil
}

// Item implements domain.Entry over a Plex metadata record
type Item struct {
	client *Client
	meta   Metadata
}

func (i *Item) GUID() string      { return i.meta.GUID }
func (i *Item) Type() string      { return i.meta.Type }
func (i *Item) Duration() int64   { return i.meta.Duration }
func (i *Item) RatingKey() string { return i.meta.RatingKey }
func (i *Item) Title() string     { return i.meta.Title }
func (i *Item) Year() int         { return i.meta.Year }

func (i *Item) GUIDs() []string {
	guids := make([]string, 0, len(i.meta.Guids))
	for _, g := range i.meta.Guids {
		guids = append(guids, g.ID)
	}
	return guids
}

func (i *Item) UserRating() (float64, bool) {
	if i.meta.UserRating == nil {
		return 0, false
	}
	return *i.meta.UserRating, true
}

func (i *Item) LastViewedAt() (time.Time, bool) {
	if i.meta.LastViewedAt == 0 {
		return time.Time{}, false
	}
	return time.Unix(i.meta.LastViewedAt, 0), true
}

func (i *Item) Rate(ctx context.Context, rating float64) error {
	return i.client.Rate(ctx, i.meta.RatingKey, rating)
}

func (i *Item) MarkWatched(ctx context.Context) error {
	return i.client.MarkWatched(ctx, i.meta.RatingKey)
}

// MapSections converts Plex directories to sections
func MapSections(c *Client, dirs []Directory) []domain.Section {
	sections := make([]domain.Section, 0, len(dirs))
	for _, d := range dirs {
		sections = append(sections, &Section{client: c, dir: d})
	}
	return sections
}

// MapEntries converts Plex metadata to catalog entries
func MapEntries(c *Client, metadata []Metadata) []domain.Entry {
	entries := make([]domain.Entry, 0, len(metadata))
	for _, m := range metadata {
		entries = append(entries, &Item{client: c, meta: m})
	}
	return entries
}

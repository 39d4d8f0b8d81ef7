package store

import (
	"time"

	"github.com/jplandry908/PlexTraktSync/internal/plexapi"
)

// Record is the persisted form of a resolved library item
type Record struct {
	Section   string     `json:"section"`
	RatingKey string     `json:"ratingKey"`
	MediaType string     `json:"mediaType"`
	GUID      string     `json:"guid"`
	Provider  string     `json:"provider"`
	ID        string     `json:"id"`
	Rating    *int       `json:"rating,omitempty"`
	SeenAt    *time.Time `json:"seenAt,omitempty"`
}

// RecordFromItem snapshots a resolved item. The item must resolve; items taken
// from LibrarySection.Items always do.
func RecordFromItem(section string, item *plexapi.LibraryItem) (Record, error) {
	provider, err := item.Provider()
	if err != nil {
		return Record{}, err
	}
	id, err := item.ID()
	if err != nil {
		return Record{}, err
	}

	r := Record{
		Section:   section,
		RatingKey: item.Entry().RatingKey(),
		MediaType: item.MediaType(),
		GUID:      item.GUID(),
		Provider:  provider,
		ID:        id,
	}
	if rating, ok := item.Rating(); ok {
		r.Rating = &rating
	}
	if seen, err := item.SeenDate(); err == nil {
		r.SeenAt = &seen
	}
	return r, nil
}

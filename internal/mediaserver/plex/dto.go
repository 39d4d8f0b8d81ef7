package plex

// MediaContainer is the root container for Plex API responses
type MediaContainer struct {
	Size                int         `json:"size"`
	TotalSize           int         `json:"totalSize,omitempty"`
	Offset              int         `json:"offset,omitempty"`
	Identifier          string      `json:"identifier,omitempty"`
	LibrarySectionID    int         `json:"librarySectionID,omitempty"`
	LibrarySectionTitle string      `json:"librarySectionTitle,omitempty"`
	Directory           []Directory `json:"Directory,omitempty"`
	Metadata            []Metadata  `json:"Metadata,omitempty"`
}

// Guid represents an external identifier (IMDB, TMDB, TVDB, etc.)
type Guid struct {
	ID string `json:"id"` // e.g. "imdb://tt1234567", "tmdb://12345", "tvdb://12345"
}

// Directory represents a library section
type Directory struct {
	Key              string `json:"key"`
	Type             string `json:"type"`
	Title            string `json:"title"`
	Agent            string `json:"agent,omitempty"`
	UpdatedAt        int64  `json:"updatedAt,omitempty"`
	ContentChangedAt int64  `json:"contentChangedAt,omitempty"`
}

// Metadata represents a media item (movie or show)
type Metadata struct {
	RatingKey           string   `json:"ratingKey"`
	Key                 string   `json:"key"`
	GUID                string   `json:"guid,omitempty"` // Agent GUID, plex:// for the new agents
	Guids               []Guid   `json:"Guid,omitempty"` // External IDs, only with includeGuids=1
	Type                string   `json:"type"`
	Title               string   `json:"title"`
	Year                int      `json:"year,omitempty"`
	UserRating          *float64 `json:"userRating,omitempty"` // absent when unrated
	ViewOffset          int64    `json:"viewOffset,omitempty"`
	ViewCount           int      `json:"viewCount,omitempty"`
	LastViewedAt        int64    `json:"lastViewedAt,omitempty"` // unix seconds
	Duration            int64    `json:"duration,omitempty"`     // milliseconds
	AddedAt             int64    `json:"addedAt,omitempty"`
	UpdatedAt           int64    `json:"updatedAt,omitempty"`
	LibrarySectionID    int      `json:"librarySectionID,omitempty"`
	LibrarySectionTitle string   `json:"librarySectionTitle,omitempty"`
}

// APIResponse wraps the MediaContainer for JSON unmarshaling
type APIResponse struct {
	MediaContainer MediaContainer `json:"MediaContainer"`
}

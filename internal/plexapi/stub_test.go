package plexapi

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/jplandry908/PlexTraktSync/internal/domain"
)

type stubEntry struct {
	guid      string
	guids     []string
	kind      string
	rating    *float64
	viewedAt  time.Time
	duration  int64
	key       string
	rateCalls []float64
	watched   int
	err       error
}

func (e *stubEntry) GUID() string    { return e.guid }
func (e *stubEntry) GUIDs() []string { return e.guids }
func (e *stubEntry) Type() string    { return e.kind }
func (e *stubEntry) Duration() int64 { return e.duration }
func (e *stubEntry) RatingKey() string {
	return e.key
}

func (e *stubEntry) UserRating() (float64, bool) {
	if e.rating == nil {
		return 0, false
	}
	return *e.rating, true
}

func (e *stubEntry) LastViewedAt() (time.Time, bool) {
	return e.viewedAt, !e.viewedAt.IsZero()
}

func (e *stubEntry) Rate(ctx context.Context, rating float64) error {
	if e.err != nil {
		return e.err
	}
	e.rateCalls = append(e.rateCalls, rating)
	return nil
}

func (e *stubEntry) MarkWatched(ctx context.Context) error {
	if e.err != nil {
		return e.err
	}
	e.watched++
	return nil
}

type stubSection struct {
	title   string
	kind    string
	entries []domain.Entry
	err     error
	calls   int
}

func (s *stubSection) Title() string { return s.title }
func (s *stubSection) Type() string  { return s.kind }

func (s *stubSection) All(ctx context.Context) ([]domain.Entry, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

type stubLibrary struct {
	sections      []domain.Section
	items         map[string]domain.Entry
	sectionCalls  int
	fetchCalls    map[string]int
	sectionsError error
}

func (l *stubLibrary) Sections(ctx context.Context) ([]domain.Section, error) {
	l.sectionCalls++
	if l.sectionsError != nil {
		return nil, l.sectionsError
	}
	return l.sections, nil
}

func (l *stubLibrary) FetchItem(ctx context.Context, key string) (domain.Entry, error) {
	if l.fetchCalls == nil {
		l.fetchCalls = make(map[string]int)
	}
	l.fetchCalls[key]++
	entry, ok := l.items[key]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return entry, nil
}

func movie(guid string, guids ...string) *stubEntry {
	return &stubEntry{guid: guid, guids: guids, kind: "movie", duration: 1000, key: guid}
}

func ratingOf(v float64) *float64 { return &v }

// captureLogger returns a debug level text logger writing into a buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

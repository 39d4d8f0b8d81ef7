package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jplandry908/PlexTraktSync/internal/domain"
	"github.com/jplandry908/PlexTraktSync/internal/plexapi"
	"github.com/jplandry908/PlexTraktSync/internal/search"
)

func newSectionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List movie and show sections with their usable item counts",
		Args:  cobra.NoArgs,
		RunE:  withSession(opts, runSections),
	}
}

func runSections(cmd *cobra.Command, _ []string, s *session) error {
	sections, err := syncableSections(cmd.Context(), s.api)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(sections))
	for _, section := range sections {
		n, err := section.Len(cmd.Context())
		if err != nil {
			return fmt.Errorf("list %s: %w", section.Title(), err)
		}
		rows = append(rows, []string{section.Title(), section.Kind(), strconv.Itoa(n)})
	}

	out := cmd.OutOrStdout()
	printHeading(out, "Library sections")
	fmt.Fprintln(out, renderTable(
		[]string{"Title", "Type", "Items"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
	return nil
}

func newItemsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "items <section>",
		Short: "List the resolved items of a section",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(opts, runItems),
	}
}

func runItems(cmd *cobra.Command, args []string, s *session) error {
	sections, err := syncableSections(cmd.Context(), s.api)
	if err != nil {
		return err
	}
	section, err := pickSection(sections, args[0])
	if err != nil {
		return err
	}

	items, err := section.Items(cmd.Context())
	if err != nil {
		return fmt.Errorf("list %s: %w", section.Title(), err)
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		provider, _ := item.Provider()
		id, _ := item.ID()
		rows = append(rows, []string{
			item.Entry().RatingKey(),
			provider,
			id,
			formatRating(item),
			formatSeen(item),
		})
	}

	out := cmd.OutOrStdout()
	printHeading(out, fmt.Sprintf("%s (%d items)", section.Title(), len(items)))
	fmt.Fprintln(out, renderTable(
		[]string{"Key", "Provider", "ID", "Rating", "Last Viewed"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}

// syncableSections returns movie sections followed by show sections.
func syncableSections(ctx context.Context, api *plexapi.API) ([]*plexapi.LibrarySection, error) {
	movies, err := api.MovieSections(ctx)
	if err != nil {
		return nil, err
	}
	shows, err := api.ShowSections(ctx)
	if err != nil {
		return nil, err
	}
	return append(append([]*plexapi.LibrarySection{}, movies...), shows...), nil
}

func pickSection(sections []*plexapi.LibrarySection, query string) (*plexapi.LibrarySection, error) {
	titles := make([]string, len(sections))
	for i, section := range sections {
		titles[i] = section.Title()
	}

	if i := search.FindSection(query, titles); i >= 0 {
		return sections[i], nil
	}

	if suggestions := search.Suggest(query, titles); len(suggestions) > 0 {
		return nil, fmt.Errorf("%w: %q (did you mean %s?)", domain.ErrLibraryNotFound, query, strings.Join(suggestions, ", "))
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrLibraryNotFound, query)
}

func formatRating(item *plexapi.LibraryItem) string {
	if rating, ok := item.Rating(); ok {
		return strconv.Itoa(rating)
	}
	return "-"
}

func formatSeen(item *plexapi.LibraryItem) string {
	seen, err := item.SeenDate()
	if err != nil {
		return "-"
	}
	return seen.Format(time.RFC3339)
}

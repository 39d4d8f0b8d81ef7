package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jplandry908/PlexTraktSync/internal/domain"
	"github.com/jplandry908/PlexTraktSync/internal/store"
)

func newIndexCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Resolve every movie and show section into the local provider index",
		Args:  cobra.NoArgs,
		RunE:  withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			return runIndex(cmd, opts, s)
		}),
	}
}

func runIndex(cmd *cobra.Command, opts *options, s *session) error {
	idx, err := opts.newStore(s.cfg.Cache.Dir, s.cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer idx.Close()

	sections, err := syncableSections(cmd.Context(), s.api)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(sections))
	total := 0
	for _, section := range sections {
		items, err := section.Items(cmd.Context())
		if err != nil {
			return fmt.Errorf("list %s: %w", section.Title(), err)
		}

		records := make([]store.Record, 0, len(items))
		for _, item := range items {
			r, err := store.RecordFromItem(section.Title(), item)
			if err != nil {
				s.logger.Warn("skipping unindexable item", "item", item.String(), "error", err)
				continue
			}
			records = append(records, r)
		}

		if err := idx.SaveSection(section.Title(), records); err != nil {
			return fmt.Errorf("index %s: %w", section.Title(), err)
		}
		s.logger.Info("indexed section", "section", section.Title(), "items", len(records))

		total += len(records)
		rows = append(rows, []string{section.Title(), section.Kind(), strconv.Itoa(len(records))})
	}

	out := cmd.OutOrStdout()
	printHeading(out, fmt.Sprintf("Indexed %d items", total))
	fmt.Fprintln(out, renderTable(
		[]string{"Section", "Type", "Items"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
	return nil
}

func newLookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <provider> <id>",
		Short: "Find an indexed item by provider id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, args, opts)
		},
	}
}

// runLookup only reads the index, so it needs no server connection.
func runLookup(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := opts.loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	idx, err := opts.newStore(cfg.Cache.Dir, cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer idx.Close()

	provider, id := args[0], args[1]
	r, ok := idx.Lookup(provider, id)
	if !ok {
		return fmt.Errorf("%w: %s://%s is not indexed", domain.ErrItemNotFound, provider, id)
	}

	rating, seen := "-", "-"
	if r.Rating != nil {
		rating = strconv.Itoa(*r.Rating)
	}
	if r.SeenAt != nil {
		seen = r.SeenAt.Format(time.RFC3339)
	}

	out := cmd.OutOrStdout()
	printHeading(out, fmt.Sprintf("%s:%s", provider, id))
	fmt.Fprintln(out, renderTable(
		[]string{"Section", "Key", "Type", "GUID", "Rating", "Last Viewed"},
		[][]string{{r.Section, r.RatingKey, r.MediaType, r.GUID, rating, seen}},
		nil,
	))
	return nil
}

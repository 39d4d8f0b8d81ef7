package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Plex user ratings use a ten point scale
const maxRating = 10

func newItemCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "item <key>",
		Short: "Show how an item resolves to a provider id",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(opts, runItem),
	}
}

func runItem(cmd *cobra.Command, args []string, s *session) error {
	item, err := s.api.FetchItem(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	provider, err := item.Provider()
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}
	id, err := item.ID()
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}

	rows := [][]string{
		{"Key", item.Entry().RatingKey()},
		{"Type", item.MediaType()},
		{"GUID", item.GUID()},
		{"Alternate GUIDs", strings.Join(item.GUIDs(), "\n")},
		{"Legacy IMDb GUID", strconv.FormatBool(item.GUIDIsIMDBLegacy())},
		{"Provider", provider},
		{"ID", id},
		{"Rating", formatRating(item)},
		{"Last Viewed", formatSeen(item)},
	}

	out := cmd.OutOrStdout()
	printHeading(out, item.String())
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
	return nil
}

func newWatchedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watched <key>",
		Short: "Mark an item watched and print the recorded view date",
		Args:  cobra.ExactArgs(1),
		RunE:  withSession(opts, runWatched),
	}
}

func runWatched(cmd *cobra.Command, args []string, s *session) error {
	ctx := cmd.Context()

	item, err := s.api.FetchItem(ctx, args[0])
	if err != nil {
		return err
	}
	if err := s.api.MarkWatched(ctx, item); err != nil {
		return err
	}

	// The cached item still holds the old view date
	item, err = s.api.ReloadItem(ctx, item)
	if err != nil {
		return err
	}

	s.logger.Info("marked watched", "item", item.String())
	fmt.Fprintf(cmd.OutOrStdout(), "%s last viewed %s\n", item, formatSeen(item))
	return nil
}

func newRateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <key> <rating>",
		Short: "Set the user rating of an item (0-10)",
		Args:  cobra.ExactArgs(2),
		RunE:  withSession(opts, runRate),
	}
}

func runRate(cmd *cobra.Command, args []string, s *session) error {
	rating, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid rating %q: %w", args[1], err)
	}
	if rating < 0 || rating > maxRating {
		return fmt.Errorf("rating %v out of range 0-%d", rating, maxRating)
	}

	item, err := s.api.FetchItem(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := s.api.Rate(cmd.Context(), item, rating); err != nil {
		return err
	}

	s.logger.Info("rated item", "item", item.String(), "rating", rating)
	fmt.Fprintf(cmd.OutOrStdout(), "%s rated %s\n", item, strconv.FormatFloat(rating, 'f', -1, 64))
	return nil
}

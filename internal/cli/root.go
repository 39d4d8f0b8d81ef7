package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jplandry908/PlexTraktSync/internal/config"
	"github.com/jplandry908/PlexTraktSync/internal/domain"
	"github.com/jplandry908/PlexTraktSync/internal/logging"
	"github.com/jplandry908/PlexTraktSync/internal/mediaserver/plex"
	"github.com/jplandry908/PlexTraktSync/internal/plexapi"
	"github.com/jplandry908/PlexTraktSync/internal/store"
)

// Execute runs the root CLI command.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := newOptions()
	rootCmd := newRootCmd(opts)
	rootCmd.Version = version
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plexsync",
		Short:         "Inspect and index a Plex library by external provider id",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ~/.config/plexsync/config.yaml)")

	cmd.AddCommand(
		newSectionsCmd(opts),
		newItemsCmd(opts),
		newItemCmd(opts),
		newWatchedCmd(opts),
		newRateCmd(opts),
		newIndexCmd(opts),
		newLookupCmd(opts),
	)

	return cmd
}

type options struct {
	configPath string

	loadConfig  func(path string) (*config.Config, error)
	setupLogger func(cfg *config.LoggingConfig) (*slog.Logger, func() error, error)
	newLibrary  func(cfg *config.Config, logger *slog.Logger) (domain.Library, error)
	newStore    func(dir, serverURL string) (*store.IndexStore, error)
}

func newOptions() *options {
	return &options{
		loadConfig:  config.Load,
		setupLogger: logging.Setup,
		newLibrary: func(cfg *config.Config, logger *slog.Logger) (domain.Library, error) {
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return plex.NewClient(cfg.Server.URL, cfg.Server.Token, cfg.Server.ClientID, logger), nil
		},
		newStore: store.NewIndexStore,
	}
}

// session holds what a single command invocation needs
type session struct {
	cfg    *config.Config
	api    *plexapi.API
	logger *slog.Logger

	closeLog func() error
}

func (o *options) open() (*session, error) {
	cfg, err := o.loadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := o.setupLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	library, err := o.newLibrary(cfg, logger)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("init plex client: %w", err)
	}

	api := plexapi.New(library, plexapi.Options{
		ExcludedLibraries: cfg.ExcludedLibraries,
		ProviderOverrides: plexapi.ProviderOverrides(cfg.XBMCProviders),
	}, logger)

	return &session{cfg: cfg, api: api, logger: logger, closeLog: closeLog}, nil
}

func (s *session) Close() error {
	return s.closeLog()
}

// withSession opens a session around run and closes it afterwards.
func withSession(opts *options, run func(*cobra.Command, []string, *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := opts.open()
		if err != nil {
			return err
		}
		defer s.Close()
		return run(cmd, args, s)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/handiism/smugmug-downloader/internal/config"
	"github.com/handiism/smugmug-downloader/internal/download"
	"github.com/handiism/smugmug-downloader/internal/model"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// sessionEnv names the environment variable read when --session is not given.
const sessionEnv = "SMUGMUG_SESSION"

// exitInterrupted is the exit code after SIGINT/SIGTERM.
const exitInterrupted = 130

type options struct {
	configFile    string
	session       string
	user          string
	output        string
	albums        string
	mask          string
	pages         string
	retryDelay    float64
	maxRetries    int
	verifyImages  bool
	writeMetadata bool
	dryRun        bool
	verbose       bool
	logFormat     string
}

func newRootCmd(o *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "smugmug-dl",
		Short: "Download albums from a SmugMug account",
		Long: `Download every album of a SmugMug account into a local directory tree
that mirrors the album URL paths. Files already on disk are skipped, so an
interrupted run can simply be started again.

For interactive mode, use: smugmug-tui`,
		Example: `  smugmug-dl -u jdoe
  smugmug-dl -u jdoe -a "Summer 2020$Family" -p
  smugmug-dl -u jdoe -m /2020/09 -s "$SMSESS" -o ~/Pictures/smugmug`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, o)
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(settings)
			if err != nil {
				return err
			}

			return run(cmd.Context(), settings, logger, o.dryRun)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "c", "", "Settings file (YAML)")
	flags.StringVarP(&o.session, "session", "s", "", "SMSESS cookie, required for password protected accounts (default $"+sessionEnv+")")
	flags.StringVarP(&o.user, "user", "u", "", "Account nickname, as in NICKNAME.smugmug.com")
	flags.StringVarP(&o.output, "output", "o", "output/", "Output directory")
	flags.StringVarP(&o.albums, "albums", "a", "", `Album names to download, split by $ (e.g. "Title 1$Title 2")`)
	flags.StringVarP(&o.mask, "mask", "m", "", `Album path prefix to download (e.g. "/2020/09/Family"); --albums has priority`)
	flags.StringVarP(&o.pages, "pages", "p", "no", "Follow album pages; --pages=no disables")
	flags.Lookup("pages").NoOptDefVal = "yes"
	flags.Float64Var(&o.retryDelay, "retry-delay", 5, "Seconds to wait before retrying a failed connection")
	flags.IntVar(&o.maxRetries, "max-retries", 0, "Connection retries per file, 0 retries forever")
	flags.BoolVar(&o.verifyImages, "verify-images", false, "Decode downloaded images and discard corrupt ones")
	flags.BoolVar(&o.writeMetadata, "write-metadata", false, "Write title, caption and keywords into images (needs exiftool)")
	flags.BoolVar(&o.dryRun, "dry-run", false, "List the selected albums without downloading")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Show verbose output")
	flags.StringVar(&o.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(newConfigCmd(o))

	return rootCmd
}

func newConfigCmd(o *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage settings files",
	}

	saveCmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Write the effective settings to a YAML file",
		Long: `Write the settings resulting from --config and the other flags to a YAML
file, to be reused with --config. The file includes the session cookie and
is only readable by its owner.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, o)
			if err != nil {
				return err
			}
			if err := settings.Save(args[0]); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings saved to %s\n", args[0])
			return nil
		},
	}

	configCmd.AddCommand(saveCmd)
	return configCmd
}

// loadSettings reads the settings file, if any, and applies the flags the
// user set on top of it. Unset flags keep file values.
func loadSettings(cmd *cobra.Command, o *options) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if o.configFile != "" {
		var err error
		settings, err = config.Load(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("session") {
		settings.Session = o.session
	} else if settings.Session == "" {
		settings.Session = os.Getenv(sessionEnv)
	}
	if flags.Changed("user") {
		settings.User = o.user
	}
	if flags.Changed("output") {
		settings.OutputDir = o.output
	}
	if flags.Changed("albums") {
		settings.Albums = model.ParseAlbumNames(o.albums)
		// An explicit selection must never widen to the mask or to every album.
		if len(settings.Albums) == 0 && strings.TrimSpace(o.albums) != "" {
			return nil, fmt.Errorf("--albums %q names no album, separate names with %q", o.albums, model.AlbumNameSeparator)
		}
	}
	if flags.Changed("mask") {
		settings.Mask = o.mask
	}
	if flags.Changed("pages") {
		settings.FollowPages = config.ParsePagesFlag(o.pages)
	}
	if flags.Changed("retry-delay") {
		settings.RetryDelay = o.retryDelay
	}
	if flags.Changed("max-retries") {
		settings.MaxRetries = o.maxRetries
	}
	if flags.Changed("verify-images") {
		settings.VerifyImages = o.verifyImages
	}
	if flags.Changed("write-metadata") {
		settings.WriteMetadata = o.writeMetadata
	}
	if o.verbose {
		settings.LogLevel = "debug"
	}
	if flags.Changed("log-format") {
		settings.LogFormat = o.logFormat
	}

	return settings, nil
}

// run downloads everything settings selects. It stops early on SIGINT or
// SIGTERM and returns context.Canceled in that case.
func run(ctx context.Context, settings *config.Settings, logger *log.Logger, dryRun bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return fetchAll(ctx, settings, logger, dryRun)
	})
	g.Go(func() error {
		return watchSignals(ctx, logger)
	})

	return g.Wait()
}

func fetchAll(ctx context.Context, settings *config.Settings, logger *log.Logger, dryRun bool) error {
	manager := download.NewManager(settings, progressLogger(logger))
	defer manager.Close()

	if err := manager.Initialize(ctx); err != nil {
		return err
	}

	if dryRun {
		for _, name := range manager.GetAlbumNames() {
			logger.Info(name)
		}
		logger.Info("Dry run, not downloading")
		return nil
	}

	manager.PrepareDirectories()
	if err := manager.StartDownloads(ctx); err != nil {
		return err
	}

	stats := manager.GetProgress()
	logger.WithFields(log.Fields{
		"albums":     stats.AlbumsDone,
		"downloaded": stats.FilesDownloaded,
		"skipped":    stats.FilesSkipped,
		"failed":     stats.FilesFailed,
		"mb":         fmt.Sprintf("%.2f", float64(stats.BytesReceived)/1024/1024),
	}).Info("Summary")
	return nil
}

func watchSignals(ctx context.Context, logger *log.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		return nil
	case sig := <-sigCh:
		logger.Warnf("Received %s, cancelling...", sig)
		return context.Canceled
	}
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return 1
	}
}

func main() {
	err := newRootCmd(&options{}).Execute()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Download cancelled.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(exitCode(err))
}

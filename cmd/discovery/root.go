package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-article-discovery/config"
	"github.com/gcbaptista/go-article-discovery/internal/engine"
	"github.com/gcbaptista/go-article-discovery/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig     string
	flagVerbose    bool
	flagContentDir string
	flagFeed       string
	flagSnapshot   string
)

// Loaded by the root command before any subcommand runs.
var (
	settings config.Settings
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "discovery",
	Short:         "Article discovery service",
	Long:          "discovery serves a searchable, tag-filterable article list whose filter state round-trips through the URL.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd {
		case versionCmd, configPathCmd, configInitCmd:
			return nil
		}
		return initSettings()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: $XDG_CONFIG_HOME/"+config.ConfigRelPath+")")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagContentDir, "content-dir", "", "directory of markdown articles")
	rootCmd.PersistentFlags().StringVar(&flagFeed, "feed", "", "RSS/Atom feed URL or file")
	rootCmd.PersistentFlags().StringVar(&flagSnapshot, "snapshot", "", "catalog snapshot to load")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(configCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("discovery %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func initSettings() error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Command-line sources replace the configured ones entirely.
	if flagContentDir != "" || flagFeed != "" || flagSnapshot != "" {
		loaded.Content.Dir = flagContentDir
		loaded.Content.Feed = flagFeed
		loaded.Content.Snapshot = flagSnapshot
		if flagContentDir == "" {
			loaded.Content.Watch = false
		}
	}

	if conflicts := loaded.Validate(); len(conflicts) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(conflicts, "\n  "))
	}
	settings = loaded

	logger, err = logging.New(settings.Log, flagVerbose)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// newEngine creates an engine for the loaded settings.
func newEngine() (*engine.Engine, error) {
	eng, err := engine.New(settings, engine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return eng, nil
}

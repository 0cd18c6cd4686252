package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"karolbroda.com/encore/internal/config"
)

var (
	// global flags
	mediaRoot    string
	serverURL    string
	catalogFile  string
	prefsBackend string
	prefsPath    string
	lyricsLang   string
	logLevel     string
	noPersist    bool
)

var rootCmd = &cobra.Command{
	Use:   "encore",
	Short: "terminal music player with a companion web server",
	Long: `encore plays the catalog in the terminal with a spectrum visualizer,
lyrics in several languages, favorites and recents.

when run without a subcommand, it starts the interactive player.`,
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		// default behavior: run the player
		return runPlayer(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&mediaRoot, "media-root", "", "directory holding music/, videos/ and images/")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "base url of the lyrics server")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "json file with the song catalog")
	rootCmd.PersistentFlags().StringVar(&prefsBackend, "prefs-backend", "", "preference storage: file, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs-path", "", "preference directory or sqlite database path")
	rootCmd.PersistentFlags().StringVarP(&lyricsLang, "lang", "l", "", "initial lyrics language (jp, es, en)")
	rootCmd.PersistentFlags().BoolVar(&noPersist, "no-persist", false, "keep preferences in memory only")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}

// loadConfig reads the environment, then applies any flags that were set.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()

	flags := cmd.Flags()
	if flags.Changed("media-root") {
		cfg.MediaRoot = mediaRoot
	}
	if flags.Changed("server-url") {
		cfg.ServerURL = serverURL
	}
	if flags.Changed("catalog") {
		cfg.CatalogFile = catalogFile
	}
	if flags.Changed("prefs-backend") {
		cfg.PrefsBackend = prefsBackend
	}
	if noPersist {
		cfg.PrefsBackend = "memory"
	}
	if flags.Changed("prefs-path") {
		cfg.PrefsPath = prefsPath
	}
	if flags.Changed("lang") {
		cfg.LyricsLang = lyricsLang
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = config.ParseLevel(logLevel)
	}

	return cfg
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

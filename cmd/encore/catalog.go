package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"karolbroda.com/encore/internal/catalog"
	"karolbroda.com/encore/internal/lyrics"
	"karolbroda.com/encore/internal/prefs"
	"karolbroda.com/encore/internal/terminal"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "inspect the song catalog",
}

var recentOnly bool

var catalogListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "list songs, optionally filtered by title",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		logger := newLogger(os.Stderr, cfg.LogLevel)
		cat, err := openCatalog(cfg, logger)
		if err != nil {
			return err
		}

		store, err := openPrefs(cfg, logger)
		if err != nil {
			logger.Warn("preferences unavailable, favorites not shown", "error", err)
			store = prefs.NewStore(prefs.NewMemoryBackend(), logger)
		}
		defer store.Close()

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		songs := listSongs(cat, store, query, recentOnly)
		if len(songs) == 0 {
			fmt.Println("no songs match")
			return nil
		}

		width, _ := terminal.Size()
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.SetAllowedRowLength(width)
		t.AppendHeader(table.Row{"#", "ID", "Title", "Artist", "File", "Fav"})
		for _, s := range songs {
			t.AppendRow(table.Row{cat.IndexOf(s.ID) + 1, s.ID, s.Title, s.Artist, s.File, favMark(store, s.ID)})
		}
		t.Render()

		return nil
	},
}

// listSongs picks the rows for catalog list. With recent set it keeps the
// recently played order instead of catalog order.
func listSongs(cat *catalog.Catalog, store *prefs.Store, query string, recent bool) []catalog.Song {
	matched := cat.Filter(query)
	if !recent {
		return matched
	}
	return slices.DeleteFunc(cat.Resolve(store.Recents()), func(s catalog.Song) bool {
		return !slices.ContainsFunc(matched, func(m catalog.Song) bool { return m.ID == s.ID })
	})
}

func favMark(store *prefs.Store, id string) string {
	if store.IsFavorite(id) {
		return "*"
	}
	return ""
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "show one song with its media paths and lyric languages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		logger := newLogger(os.Stderr, cfg.LogLevel)
		cat, err := openCatalog(cfg, logger)
		if err != nil {
			return err
		}

		song, ok := cat.Get(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", catalog.ErrUnknownSong, args[0])
		}

		store := lyrics.NewStore(logger)
		if cfg.LyricsFile != "" {
			if err := store.LoadFile(cfg.LyricsFile); err != nil {
				logger.Warn("lyrics file ignored", "path", cfg.LyricsFile, "error", err)
			}
		}
		langs := store.Languages(song.ID)

		fmt.Printf("id:      %s\n", song.ID)
		fmt.Printf("title:   %s\n", song.Title)
		fmt.Printf("artist:  %s\n", song.Artist)
		fmt.Printf("audio:   %s\n", catalog.AudioPath(song))
		fmt.Printf("video:   %s\n", catalog.VideoPath(song))
		if song.Info != "" {
			fmt.Printf("info:    %s\n", song.Info)
		}
		if len(langs) == 0 {
			fmt.Println("lyrics:  none")
		} else {
			fmt.Printf("lyrics:  %s\n", strings.Join(langs, ", "))
		}

		return nil
	},
}

func init() {
	catalogListCmd.Flags().BoolVar(&recentOnly, "recent", false, "list recently played songs, newest first")
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"karolbroda.com/encore/internal/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "view and edit persisted preferences",
	Long: `preferences are stored per key in the configured backend (file, sqlite
or memory). keys: ` + strings.Join(prefs.Keys, ", ") + `.`,
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "show every preference",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPrefsCmd(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		p := store.Snapshot()
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Key", "Value"})
		for _, key := range prefs.Keys {
			t.AppendRow(table.Row{key, formatPref(p, key)})
		}
		t.Render()

		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "set a preference",
	Long:  `set a preference. lists (favorites, recentSongs) take comma separated song ids.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPrefsCmd(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetString(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args[0], formatPref(store.Snapshot(), args[0]))
		return nil
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset <key>",
	Short: "restore a preference to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPrefsCmd(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Reset(args[0]); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args[0], formatPref(store.Snapshot(), args[0]))
		return nil
	},
}

func openPrefsCmd(cmd *cobra.Command) (*prefs.Store, error) {
	cfg := loadConfig(cmd)
	return openPrefs(cfg, newLogger(os.Stderr, cfg.LogLevel))
}

func formatPref(p prefs.Preferences, key string) string {
	switch key {
	case prefs.KeyFavorites:
		return formatList(p.Favorites)
	case prefs.KeyRecentSongs:
		return formatList(p.RecentSongs)
	case prefs.KeyTheme:
		return p.Theme
	case prefs.KeyAutoPlay:
		return strconv.FormatBool(p.AutoPlay)
	case prefs.KeyCrossfade:
		return fmt.Sprintf("%ds", p.Crossfade)
	case prefs.KeyQuality:
		return p.Quality
	}
	return ""
}

func formatList(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	prefsCmd.AddCommand(prefsResetCmd)
	rootCmd.AddCommand(prefsCmd)
}

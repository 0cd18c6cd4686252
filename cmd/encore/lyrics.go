package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"karolbroda.com/encore/internal/lyrics"
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "query the lyrics server",
}

var lyricsGetCmd = &cobra.Command{
	Use:   "get <id> [lang]",
	Short: "fetch lyrics for a song from the server",
	Long: `fetches lyrics for a song from the configured server and prints them as
plain text. lang is one of jp, es or en and defaults to --lang.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		lang := cfg.LyricsLang
		if len(args) == 2 {
			lang = args[1]
		}
		if !lyrics.IsLanguage(lang) {
			return fmt.Errorf("unknown language %q (want one of %v)", lang, lyrics.Languages)
		}

		loader := lyrics.NewLoader(cfg.ServerURL)
		l, err := loader.Load(context.Background(), args[0], lang)
		if errors.Is(err, lyrics.ErrUnavailable) {
			fmt.Println("no lyrics available")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n\n", args[0], lyrics.LanguageName(lang))
		fmt.Println(lyrics.PlainText(l.Text))
		return nil
	},
}

func init() {
	lyricsCmd.AddCommand(lyricsGetCmd)
	rootCmd.AddCommand(lyricsCmd)
}

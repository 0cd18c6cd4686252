package ui

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"karolbroda.com/encore/internal/lyrics"
)

const (
	lyricsUnavailable = "Letras no disponibles"
	lyricsEmptyState  = "Selecciona una canción para ver las letras..."
)

// displayLines splits lyrics into the rows the panel shows. Timed lyrics
// keep one row per timestamp so row indexes match line indexes.
func displayLines(l lyrics.Lyrics) []string {
	if l.Synced() {
		return lo.Map(l.Lines, func(line lyrics.TimedLine, _ int) string { return line.Text })
	}
	if strings.TrimSpace(l.Text) == "" {
		return nil
	}
	return strings.Split(lyrics.PlainText(l.Text), "\n")
}

// lyricLineAt picks the row to highlight. Timed lyrics follow their
// timestamps; plain text is spread evenly over the song duration.
func lyricLineAt(l lyrics.Lyrics, rows int, position time.Duration, duration time.Duration, known bool) int {
	if l.Synced() {
		return lyrics.FindCurrentLineIndex(l.Lines, position)
	}
	if rows == 0 || !known || duration <= 0 {
		return -1
	}
	idx := int(float64(rows) * float64(position) / float64(duration))
	return max(0, min(rows-1, idx))
}

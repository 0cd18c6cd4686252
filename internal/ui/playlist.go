package ui

import (
	"strings"

	"github.com/samber/lo"

	"karolbroda.com/encore/internal/catalog"
	"karolbroda.com/encore/internal/prefs"
)

type Tab int

const (
	TabAll Tab = iota
	TabFavorites
	TabRecent
)

var tabs = []Tab{TabAll, TabFavorites, TabRecent}

func (t Tab) String() string {
	switch t {
	case TabFavorites:
		return "favorites"
	case TabRecent:
		return "recent"
	}
	return "all"
}

func (t Tab) Label() string {
	switch t {
	case TabFavorites:
		return "Favoritos"
	case TabRecent:
		return "Recientes"
	}
	return "Todas"
}

func (t Tab) Next() Tab {
	return tabs[(int(t)+1)%len(tabs)]
}

// Row is one playlist entry as the list shows it.
type Row struct {
	Number   int
	Song     catalog.Song
	Favorite bool
	Current  bool
}

// Rows projects the catalog and preferences onto the rows of tab, keeping
// only titles that contain query. Favorites and recents keep their stored
// order; ids the catalog does not know are skipped.
func Rows(cat *catalog.Catalog, p prefs.Preferences, tab Tab, query string, currentID string) []Row {
	var songs []catalog.Song
	switch tab {
	case TabFavorites:
		songs = cat.Resolve(p.Favorites)
	case TabRecent:
		songs = cat.Resolve(p.RecentSongs)
	default:
		songs = cat.Songs()
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q != "" {
		songs = lo.Filter(songs, func(s catalog.Song, _ int) bool {
			return strings.Contains(strings.ToLower(s.Title), q)
		})
	}

	return lo.Map(songs, func(s catalog.Song, i int) Row {
		return Row{
			Number:   i + 1,
			Song:     s,
			Favorite: lo.Contains(p.Favorites, s.ID),
			Current:  s.ID == currentID,
		}
	})
}

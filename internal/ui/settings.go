package ui

import (
	"fmt"
	"slices"

	"karolbroda.com/encore/internal/prefs"
)

type settingItem int

const (
	settingAutoPlay settingItem = iota
	settingCrossfade
	settingQuality
	settingCount
)

type settingsModal struct {
	cursor settingItem
}

func (s *settingsModal) up() {
	s.cursor = (s.cursor - 1 + settingCount) % settingCount
}

func (s *settingsModal) down() {
	s.cursor = (s.cursor + 1) % settingCount
}

// adjust applies one step in direction dir (+1 or -1) to the selected
// setting and persists it right away.
func (s settingsModal) adjust(store Preferences, dir int) error {
	p := store.Snapshot()
	switch s.cursor {
	case settingAutoPlay:
		return store.SetAutoPlay(!p.AutoPlay)
	case settingCrossfade:
		next := max(0, min(prefs.MaxCrossfade, p.Crossfade+dir))
		if next == p.Crossfade {
			return nil
		}
		return store.SetCrossfade(next)
	case settingQuality:
		idx := slices.Index(prefs.Qualities, p.Quality)
		n := len(prefs.Qualities)
		idx = ((idx+dir)%n + n) % n
		return store.SetQuality(prefs.Qualities[idx])
	}
	return nil
}

type settingRow struct {
	Label    string
	Value    string
	Selected bool
}

func (s settingsModal) rows(p prefs.Preferences) []settingRow {
	autoPlay := "no"
	if p.AutoPlay {
		autoPlay = "sí"
	}
	return []settingRow{
		{Label: "Reproducción automática", Value: autoPlay, Selected: s.cursor == settingAutoPlay},
		{Label: "Crossfade", Value: fmt.Sprintf("%ds", p.Crossfade), Selected: s.cursor == settingCrossfade},
		{Label: "Calidad", Value: p.Quality, Selected: s.cursor == settingQuality},
	}
}

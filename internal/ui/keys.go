package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PlayPause  key.Binding
	Next       key.Binding
	Previous   key.Binding
	SeekBack   key.Binding
	SeekFwd    key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Mute       key.Binding
	Shuffle    key.Binding
	Repeat     key.Binding
	Favorite   key.Binding
	Search     key.Binding
	Tab        key.Binding
	Language   key.Binding
	SyncLyrics key.Binding
	Copy       key.Binding
	Theme      key.Binding
	Settings   key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Menu       key.Binding
	Back       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Next:       key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next")),
		Previous:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous")),
		SeekBack:   key.NewBinding(key.WithKeys(","), key.WithHelp(",", "-5%")),
		SeekFwd:    key.NewBinding(key.WithKeys("."), key.WithHelp(".", "+5%")),
		VolumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		VolumeDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		Mute:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		Shuffle:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		Repeat:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		Favorite:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Tab:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Language:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lyrics language")),
		SyncLyrics: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "sync lyrics")),
		Copy:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy lyrics")),
		Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Settings:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "settings")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selected")),
		Menu:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "menu")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Next, k.Previous, k.Search, k.Tab, k.Settings, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Next, k.Previous, k.SeekBack, k.SeekFwd, k.VolumeUp, k.VolumeDown},
		{k.Mute, k.Shuffle, k.Repeat, k.Favorite, k.Theme, k.Settings},
		{k.Search, k.Tab, k.Up, k.Down, k.Select, k.Menu},
		{k.Language, k.SyncLyrics, k.Copy, k.Help, k.Quit},
	}
}

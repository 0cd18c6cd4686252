package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/encore/internal/lyrics"
	"karolbroda.com/encore/internal/playback"
)

const (
	seekStep   = 0.05
	volumeStep = 0.1
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case PlayerEventMsg:
		return m.handlePlayerEvent(msg.Event)

	case LyricsLoadedMsg:
		return m.handleLyricsLoaded(msg)

	case ArtworkLoadedMsg:
		if msg.Err != nil {
			m.logger.Debug("artwork unavailable", "error", msg.Err)
			return m, nil
		}
		m.image = msg.Image
		if msg.Palette != nil {
			m.palette = msg.Palette
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, playback.ErrSuperseded) {
			m.logger.Debug("action failed", "action", msg.action, "error", msg.err)
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.logger.Warn("failed to copy lyrics", "error", msg.err)
			return m, m.showToast("No se pudieron copiar las letras", toastFailure)
		}
		return m, m.showToast("Letras copiadas al portapapeles", toastInfo)

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeSettings:
		return m.handleSettingsKey(msg)
	case modeMenu:
		return m.handleMenuKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.PlayPause):
		return m, m.transportCmd("toggle", func(ctx context.Context) error {
			return m.transport.TogglePlayPause(ctx)
		})

	case key.Matches(msg, m.keys.Next):
		return m, m.transportCmd("next", func(ctx context.Context) error {
			return m.transport.Next(ctx)
		})

	case key.Matches(msg, m.keys.Previous):
		return m, m.transportCmd("previous", func(ctx context.Context) error {
			return m.transport.Previous(ctx)
		})

	case key.Matches(msg, m.keys.SeekBack):
		m.seekBy(-seekStep)
		return m, nil

	case key.Matches(msg, m.keys.SeekFwd):
		m.seekBy(seekStep)
		return m, nil

	case key.Matches(msg, m.keys.VolumeUp):
		m.volumeBy(volumeStep)
		return m, nil

	case key.Matches(msg, m.keys.VolumeDown):
		m.volumeBy(-volumeStep)
		return m, nil

	case key.Matches(msg, m.keys.Mute):
		if m.transport != nil {
			m.state.Muted = m.transport.ToggleMute()
		}
		return m, nil

	case key.Matches(msg, m.keys.Shuffle):
		if m.transport != nil {
			m.state.Shuffle = m.transport.ToggleShuffle()
		}
		return m, nil

	case key.Matches(msg, m.keys.Repeat):
		if m.transport != nil {
			m.state.Repeat = m.transport.ToggleRepeat()
		}
		return m, nil

	case key.Matches(msg, m.keys.Favorite):
		m.toggleFavorite(m.favoriteTarget())
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Tab):
		m.tab = m.tab.Next()
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Language):
		m.lyrics.Lang = lyrics.NextLanguage(m.lyrics.Lang)
		if m.lyrics.SongID == "" {
			return m, nil
		}
		m.resetLyrics(m.lyrics.SongID)
		return m, m.loadLyricsCmd(m.lyrics.SongID, m.lyrics.Lang)

	case key.Matches(msg, m.keys.SyncLyrics):
		m.lyrics.Sync = !m.lyrics.Sync
		if m.lyrics.Sync {
			m.updateLyricIndex()
		}
		return m, m.showToast(onOff(m.lyrics.Sync,
			"Sincronización de letras activada",
			"Sincronización de letras desactivada"), toastInfo)

	case key.Matches(msg, m.keys.Copy):
		if len(m.lyrics.Lines) == 0 {
			return m, nil
		}
		return m, m.copyCmd(lyrics.PlainText(m.lyrics.Lyrics.Text))

	case key.Matches(msg, m.keys.Theme):
		if m.prefs == nil {
			return m, nil
		}
		if _, err := m.prefs.ToggleTheme(); err != nil {
			m.logger.Warn("failed to save theme", "error", err)
		}
		return m, nil

	case key.Matches(msg, m.keys.Settings):
		if m.prefs == nil {
			return m, nil
		}
		m.mode = modeSettings
		m.settings = settingsModal{}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.playCmd(row.Song.ID)

	case key.Matches(msg, m.keys.Menu):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeMenu
		m.menu = contextMenu{song: row.Song, favorite: row.Favorite}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Reset()
		m.search.Blur()
		m.mode = modeBrowse
		m.cursor = 0
		return m, nil
	case "enter", "down", "tab":
		m.search.Blur()
		m.mode = modeBrowse
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	return m, cmd
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dir := 0
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Settings), key.Matches(msg, m.keys.Quit):
		m.mode = modeBrowse
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.settings.up()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.settings.down()
		return m, nil
	case msg.String() == "left" || msg.String() == "h" || msg.String() == "-":
		dir = -1
	case msg.String() == "right" || msg.String() == "l" || msg.String() == "+" ||
		key.Matches(msg, m.keys.Select) || key.Matches(msg, m.keys.PlayPause):
		dir = 1
	default:
		return m, nil
	}

	if err := m.settings.adjust(m.prefs, dir); err != nil {
		m.logger.Warn("failed to save setting", "error", err)
		return m, m.showToast("No se pudo guardar la configuración", toastFailure)
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Menu), key.Matches(msg, m.keys.Quit):
		m.mode = modeBrowse
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.menu.up()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.menu.down()
		return m, nil
	case !key.Matches(msg, m.keys.Select):
		return m, nil
	}

	m.mode = modeBrowse
	switch m.menu.cursor {
	case menuPlay:
		return m, m.playCmd(m.menu.song.ID)
	case menuFavorite:
		m.toggleFavorite(m.menu.song.ID)
	case menuAddToPlaylist:
		return m, m.showToast(playlistNotImplemented, toastInfo)
	case menuDownload:
		return m, m.showToast(downloadNotImplemented, toastInfo)
	}
	return m, nil
}

func (m Model) playCmd(songID string) tea.Cmd {
	return m.transportCmd("play", func(ctx context.Context) error {
		return m.transport.Play(ctx, songID)
	})
}

// favoriteTarget is the playing song, or the highlighted row when nothing
// has been loaded yet.
func (m Model) favoriteTarget() string {
	if m.state.SongID != "" {
		return m.state.SongID
	}
	if row, ok := m.selected(); ok {
		return row.Song.ID
	}
	return ""
}

func (m *Model) toggleFavorite(songID string) {
	if m.transport == nil || songID == "" {
		return
	}
	if _, err := m.transport.ToggleFavorite(songID); err != nil {
		m.logger.Warn("failed to toggle favorite", "song", songID, "error", err)
	}
	m.clampCursor()
}

// seekBy moves the playhead by delta of the duration. Songs with an unknown
// duration cannot be seeked.
func (m *Model) seekBy(delta float64) {
	if m.transport == nil || !m.state.DurationKnown || m.state.Duration <= 0 {
		return
	}
	fraction := float64(m.state.Position)/float64(m.state.Duration) + delta
	fraction = max(0, min(1, fraction))
	if err := m.transport.Seek(fraction); err != nil {
		m.logger.Debug("seek failed", "error", err)
	}
}

func (m *Model) volumeBy(delta float64) {
	if m.transport == nil {
		return
	}
	v := max(0, min(1, m.state.Volume+delta))
	if err := m.transport.SetVolume(v); err != nil {
		m.logger.Debug("volume change failed", "error", err)
		return
	}
	m.state.Volume = v
}

func (m Model) handlePlayerEvent(event playback.EventData) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.listenForPlayerEvents()}

	if m.transport != nil {
		m.state = m.transport.State()
	}

	switch event.Type {
	case playback.EventTrackChanged:
		m.announce = event.SongID
		m.resetLyrics(event.SongID)
		cmds = append(cmds, m.loadLyricsCmd(event.SongID, m.lyrics.Lang))

	case playback.EventPlaybackFailed, playback.EventResumeFailed:
		m.announce = ""

	case playback.EventSeeked:
		m.animState.Reset()
		if m.lyrics.Sync {
			m.updateLyricIndex()
		}

	case playback.EventFavoriteChanged:
		m.clampCursor()
	}

	if text, kind, ok := toastFor(event, m.songTitle(event.SongID), m.announce); ok {
		if event.Type == playback.EventPlaying {
			m.announce = ""
		}
		cmds = append(cmds, m.showToast(text, kind))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleLyricsLoaded(msg LyricsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.SongID != m.lyrics.SongID || msg.Lang != m.lyrics.Lang {
		return m, nil
	}

	m.lyrics.Loading = false
	if msg.Err != nil {
		m.logger.Debug("lyrics unavailable", "song", msg.SongID, "lang", msg.Lang, "error", msg.Err)
		m.lyrics.Err = msg.Err
		m.lyrics.Lines = nil
		m.lyrics.Current = -1
		return m, nil
	}

	m.lyrics.Lyrics = msg.Lyrics
	m.lyrics.Lines = displayLines(msg.Lyrics)
	m.lyrics.Err = nil
	m.lyrics.Current = -1
	if m.lyrics.Sync {
		m.updateLyricIndex()
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.tickCount++

	if m.transport == nil {
		m.animState.Update(false, 8)
		return m, tickCmd()
	}

	m.state = m.transport.State()

	lineChanged := false
	if m.lyrics.Sync {
		lineChanged = m.updateLyricIndex()
	}
	m.animState.Update(lineChanged, 8)

	return m, tickCmd()
}

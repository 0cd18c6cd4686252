package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/encore/internal/catalog"
	"karolbroda.com/encore/internal/colors"
	"karolbroda.com/encore/internal/lyrics"
	"karolbroda.com/encore/internal/playback"
	"karolbroda.com/encore/internal/prefs"
)

type fakeTransport struct {
	mu        sync.Mutex
	state     playback.State
	prefs     *prefs.Store
	calls     []string
	played    []string
	seeks     []float64
	volumes   []float64
	favorites []string
}

func (f *fakeTransport) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeTransport) State() playback.State { return f.state }

func (f *fakeTransport) Play(_ context.Context, songID string) error {
	f.record("play")
	f.played = append(f.played, songID)
	return nil
}

func (f *fakeTransport) TogglePlayPause(context.Context) error {
	f.record("toggle")
	return nil
}

func (f *fakeTransport) Next(context.Context) error {
	f.record("next")
	return nil
}

func (f *fakeTransport) Previous(context.Context) error {
	f.record("previous")
	return nil
}

func (f *fakeTransport) Seek(fraction float64) error {
	f.seeks = append(f.seeks, fraction)
	return nil
}

func (f *fakeTransport) SetVolume(v float64) error {
	f.volumes = append(f.volumes, v)
	return nil
}

func (f *fakeTransport) ToggleMute() bool {
	f.state.Muted = !f.state.Muted
	return f.state.Muted
}

func (f *fakeTransport) ToggleShuffle() bool {
	f.state.Shuffle = !f.state.Shuffle
	return f.state.Shuffle
}

func (f *fakeTransport) ToggleRepeat() bool {
	f.state.Repeat = !f.state.Repeat
	return f.state.Repeat
}

func (f *fakeTransport) ToggleFavorite(songID string) (bool, error) {
	f.favorites = append(f.favorites, songID)
	return f.prefs.ToggleFavorite(songID)
}

type fakeLoader struct {
	text map[string]string
}

func (f fakeLoader) Load(_ context.Context, songID string, lang string) (lyrics.Lyrics, error) {
	text, ok := f.text[songID+"/"+lang]
	if !ok {
		return lyrics.Lyrics{}, lyrics.ErrUnavailable
	}
	return lyrics.Lyrics{SongID: songID, Lang: lang, Text: text, Lines: lyrics.ParseSynced(text)}, nil
}

type fixture struct {
	model     Model
	transport *fakeTransport
	prefs     *prefs.Store
	copied    []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := prefs.NewStore(prefs.NewMemoryBackend(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	transport := &fakeTransport{prefs: store, state: playback.State{Volume: 0.5}}
	f := &fixture{transport: transport, prefs: store}

	f.model = NewModel(Config{
		Transport: transport,
		Catalog:   catalog.Default(),
		Prefs:     store,
		Lyrics: fakeLoader{text: map[string]string{
			"1/jp": "一行目\n二行目\n三行目\n四行目",
			"1/es": "primera\nsegunda",
			"2/jp": "[00:01.00]uno\n[00:05.00]dos\n[00:09.00]tres",
		}},
		Clipboard: func(s string) error {
			f.copied = append(f.copied, s)
			return nil
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (f *fixture) press(t *testing.T, keys ...string) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = f.model.Update(keyMsg(k))
		f.model = next.(Model)
	}
	return cmd
}

func (f *fixture) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return cmd
}

func (f *fixture) event(t *testing.T, ev playback.EventData) {
	t.Helper()
	f.transport.state.SongID = ev.SongID
	f.send(t, PlayerEventMsg{Event: ev})
}

func TestRows(t *testing.T) {
	cat := catalog.Default()
	p := prefs.Defaults()
	p.Favorites = []string{"2", "missing"}
	p.RecentSongs = []string{"2", "1"}

	tests := []struct {
		name     string
		tab      Tab
		query    string
		expected []string
	}{
		{"all keeps catalog order", TabAll, "", []string{"1", "2"}},
		{"favorites skip unknown ids", TabFavorites, "", []string{"2"}},
		{"recent keeps stored order", TabRecent, "", []string{"2", "1"}},
		{"query is case insensitive", TabAll, "USSEEWA", []string{"1"}},
		{"query with no match", TabAll, "nothing", nil},
		{"query inside a tab", TabRecent, "odo", []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Rows(cat, p, tt.tab, tt.query, "2")
			if len(rows) != len(tt.expected) {
				t.Fatalf("got %d rows, expected %d", len(rows), len(tt.expected))
			}
			for i, row := range rows {
				if row.Song.ID != tt.expected[i] {
					t.Errorf("row %d = %q, expected %q", i, row.Song.ID, tt.expected[i])
				}
				if row.Number != i+1 {
					t.Errorf("row %d numbered %d", i, row.Number)
				}
				if row.Current != (row.Song.ID == "2") {
					t.Errorf("row %d current = %v", i, row.Current)
				}
				if row.Favorite != (row.Song.ID == "2") {
					t.Errorf("row %d favorite = %v", i, row.Favorite)
				}
			}
		})
	}
}

func TestTabCycle(t *testing.T) {
	if TabAll.Next() != TabFavorites || TabFavorites.Next() != TabRecent || TabRecent.Next() != TabAll {
		t.Error("tabs should cycle all, favorites, recent")
	}
}

func TestToastFor(t *testing.T) {
	tests := []struct {
		name     string
		ev       playback.EventData
		announce string
		text     string
		kind     toastKind
		ok       bool
	}{
		{"announced start", playback.EventData{Type: playback.EventPlaying, SongID: "1"}, "1", "Reproduciendo: Song", toastInfo, true},
		{"resume is silent", playback.EventData{Type: playback.EventPlaying, SongID: "1"}, "", "", toastInfo, false},
		{"playback failure", playback.EventData{Type: playback.EventPlaybackFailed}, "", "No se pudo reproducir la canción. Verifica el archivo o la conexión.", toastFailure, true},
		{"resume failure", playback.EventData{Type: playback.EventResumeFailed}, "", "Error al habilitar el sonido. Intenta reproducir nuevamente.", toastFailure, true},
		{"shuffle on", playback.EventData{Type: playback.EventShuffleChanged, Flag: true}, "", "Modo aleatorio activado", toastInfo, true},
		{"repeat off", playback.EventData{Type: playback.EventRepeatChanged}, "", "Repetición desactivada", toastInfo, true},
		{"favorite added", playback.EventData{Type: playback.EventFavoriteChanged, Flag: true}, "", "Añadido a favoritos", toastInfo, true},
		{"favorite removed", playback.EventData{Type: playback.EventFavoriteChanged}, "", "Eliminado de favoritos", toastInfo, true},
		{"volume has no toast", playback.EventData{Type: playback.EventVolumeChanged}, "", "", toastInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, kind, ok := toastFor(tt.ev, "Song", tt.announce)
			if ok != tt.ok || text != tt.text || kind != tt.kind {
				t.Errorf("toastFor() = (%q, %v, %v), expected (%q, %v, %v)", text, kind, ok, tt.text, tt.kind, tt.ok)
			}
		})
	}
}

func TestLyricLineAt(t *testing.T) {
	synced := lyrics.Lyrics{Text: "[00:01.00]a\n[00:05.00]b", Lines: lyrics.ParseSynced("[00:01.00]a\n[00:05.00]b")}
	plain := lyrics.Lyrics{Text: "a\nb\nc\nd"}

	tests := []struct {
		name     string
		l        lyrics.Lyrics
		pos      time.Duration
		dur      time.Duration
		known    bool
		expected int
	}{
		{"synced before first line", synced, 500 * time.Millisecond, 0, false, -1},
		{"synced second line", synced, 6 * time.Second, 0, false, 1},
		{"plain at start", plain, 0, 100 * time.Second, true, 0},
		{"plain halfway", plain, 50 * time.Second, 100 * time.Second, true, 2},
		{"plain at end clamps", plain, 100 * time.Second, 100 * time.Second, true, 3},
		{"plain unknown duration", plain, 50 * time.Second, 0, false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lyricLineAt(tt.l, len(displayLines(tt.l)), tt.pos, tt.dur, tt.known)
			if got != tt.expected {
				t.Errorf("lyricLineAt() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestDisplayLines(t *testing.T) {
	if got := displayLines(lyrics.Lyrics{Text: "  "}); got != nil {
		t.Errorf("blank lyrics should have no lines, got %v", got)
	}
	got := displayLines(lyrics.Lyrics{Text: "[00:01.00]uno\n[00:02.00]dos", Lines: lyrics.ParseSynced("[00:01.00]uno\n[00:02.00]dos")})
	if strings.Join(got, "|") != "uno|dos" {
		t.Errorf("synced lines = %v", got)
	}
}

func TestTransportKeys(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{" ", "toggle"},
		{"right", "next"},
		{"left", "previous"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			f := newFixture(t)
			cmd := f.press(t, tt.key)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if msg, ok := cmd().(actionDoneMsg); !ok || msg.err != nil {
				t.Fatalf("unexpected message %#v", msg)
			}
			if len(f.transport.calls) != 1 || f.transport.calls[0] != tt.expected {
				t.Errorf("calls = %v, expected [%s]", f.transport.calls, tt.expected)
			}
		})
	}
}

func TestSeekKeys(t *testing.T) {
	f := newFixture(t)
	f.model.state = playback.State{SongID: "1", Position: 50 * time.Second, Duration: 100 * time.Second, DurationKnown: true}

	f.press(t, ".")
	f.press(t, ",")
	if len(f.transport.seeks) != 2 {
		t.Fatalf("seeks = %v", f.transport.seeks)
	}
	if d := f.transport.seeks[0] - 0.55; d > 1e-9 || d < -1e-9 {
		t.Errorf("forward seek = %v, expected 0.55", f.transport.seeks[0])
	}
	if d := f.transport.seeks[1] - 0.45; d > 1e-9 || d < -1e-9 {
		t.Errorf("backward seek = %v, expected 0.45", f.transport.seeks[1])
	}

	f.model.state = playback.State{SongID: "1", Position: time.Second, Duration: 100 * time.Second, DurationKnown: true}
	f.press(t, ",")
	if got := f.transport.seeks[2]; got != 0 {
		t.Errorf("seek before start = %v, expected clamp to 0", got)
	}

	f.model.state = playback.State{SongID: "1", Position: time.Second}
	f.press(t, ".")
	if len(f.transport.seeks) != 3 {
		t.Error("unknown duration should not seek")
	}
}

func TestVolumeKeysClamp(t *testing.T) {
	f := newFixture(t)
	f.model.state.Volume = 0.95

	f.press(t, "+")
	if f.model.state.Volume != 1 {
		t.Errorf("volume = %v, expected 1", f.model.state.Volume)
	}
	f.model.state.Volume = 0.05
	f.press(t, "-")
	if f.model.state.Volume != 0 {
		t.Errorf("volume = %v, expected 0", f.model.state.Volume)
	}
	if len(f.transport.volumes) != 2 {
		t.Errorf("volumes = %v", f.transport.volumes)
	}
}

func TestToggleKeys(t *testing.T) {
	f := newFixture(t)
	f.press(t, "m", "s", "r")
	if !f.model.state.Muted || !f.model.state.Shuffle || !f.model.state.Repeat {
		t.Errorf("state after toggles = %+v", f.model.state)
	}
}

func TestFavoriteTarget(t *testing.T) {
	f := newFixture(t)

	f.press(t, "down", "f")
	if len(f.transport.favorites) != 1 || f.transport.favorites[0] != "2" {
		t.Fatalf("with nothing loaded the selected row should be used, got %v", f.transport.favorites)
	}

	f.model.state.SongID = "1"
	f.press(t, "f")
	if f.transport.favorites[1] != "1" {
		t.Errorf("playing song should be favorited, got %v", f.transport.favorites)
	}
	if !f.prefs.IsFavorite("1") || !f.prefs.IsFavorite("2") {
		t.Error("favorites not persisted")
	}
}

func TestSearchFiltersRows(t *testing.T) {
	f := newFixture(t)

	f.press(t, "/", "o", "d", "o")
	if f.model.Query() != "odo" {
		t.Fatalf("query = %q", f.model.Query())
	}
	rows := f.model.rows()
	if len(rows) != 1 || rows[0].Song.ID != "2" {
		t.Fatalf("rows = %+v", rows)
	}

	f.press(t, "enter")
	if f.model.mode != modeBrowse {
		t.Error("enter should leave search mode")
	}
	cmd := f.press(t, "enter")
	if cmd == nil {
		t.Fatal("enter on a row should play it")
	}
	cmd()
	if len(f.transport.played) != 1 || f.transport.played[0] != "2" {
		t.Errorf("played = %v", f.transport.played)
	}

	f.press(t, "/", "esc")
	if f.model.Query() != "" {
		t.Error("esc should clear the search")
	}
}

func TestTrackChangeLoadsLyrics(t *testing.T) {
	f := newFixture(t)

	f.transport.state.SongID = "1"
	cmd := f.send(t, PlayerEventMsg{Event: playback.EventData{Type: playback.EventTrackChanged, SongID: "1"}})
	if !f.model.lyrics.Loading {
		t.Error("lyrics should be loading after a track change")
	}
	if cmd == nil {
		t.Fatal("expected a lyrics command")
	}

	loaded, err := f.model.loader.Load(context.Background(), "1", "jp")
	if err != nil {
		t.Fatal(err)
	}
	f.send(t, LyricsLoadedMsg{SongID: "1", Lang: "jp", Lyrics: loaded})
	if f.model.lyrics.Loading || len(f.model.lyrics.Lines) != 4 {
		t.Fatalf("lyrics panel = %+v", f.model.lyrics)
	}
}

func TestStaleLyricsDropped(t *testing.T) {
	f := newFixture(t)
	f.event(t, playback.EventData{Type: playback.EventTrackChanged, SongID: "1"})
	f.event(t, playback.EventData{Type: playback.EventTrackChanged, SongID: "2"})

	f.send(t, LyricsLoadedMsg{SongID: "1", Lang: "jp", Lyrics: lyrics.Lyrics{Text: "old"}})
	if !f.model.lyrics.Loading || len(f.model.lyrics.Lines) != 0 {
		t.Error("lyrics for a previous song should be ignored")
	}

	f.send(t, LyricsLoadedMsg{SongID: "2", Lang: "es", Lyrics: lyrics.Lyrics{Text: "otra"}})
	if !f.model.lyrics.Loading {
		t.Error("lyrics for another language should be ignored")
	}
}

func TestLyricsFailureShowsInlineMessage(t *testing.T) {
	f := newFixture(t)
	f.event(t, playback.EventData{Type: playback.EventTrackChanged, SongID: "1"})
	f.send(t, LyricsLoadedMsg{SongID: "1", Lang: "jp", Err: lyrics.ErrUnavailable})

	if f.model.lyrics.Err == nil {
		t.Fatal("expected error in the panel")
	}
	if _, ok := f.model.Toast(); ok {
		t.Error("lyrics failure should not toast")
	}
	f.model.width = 120
	f.model.height = 40
	if !strings.Contains(f.model.View(), lyricsUnavailable) {
		t.Error("view should show the unavailable message")
	}
}

func TestLanguageCycleReloads(t *testing.T) {
	f := newFixture(t)
	f.event(t, playback.EventData{Type: playback.EventTrackChanged, SongID: "1"})

	cmd := f.press(t, "l")
	if f.model.lyrics.Lang != "es" {
		t.Fatalf("lang = %q, expected es", f.model.lyrics.Lang)
	}
	msg, ok := cmd().(LyricsLoadedMsg)
	if !ok || msg.Lang != "es" || msg.Err != nil {
		t.Fatalf("reload message = %#v", msg)
	}
	f.send(t, msg)
	if strings.Join(f.model.lyrics.Lines, "|") != "primera|segunda" {
		t.Errorf("lines = %v", f.model.lyrics.Lines)
	}
}

func TestSyncHighlightsLine(t *testing.T) {
	f := newFixture(t)
	f.event(t, playback.EventData{Type: playback.EventTrackChanged, SongID: "2"})
	l, _ := f.model.loader.Load(context.Background(), "2", "jp")
	f.send(t, LyricsLoadedMsg{SongID: "2", Lang: "jp", Lyrics: l})

	f.press(t, "y")
	if text, _ := f.model.Toast(); text != "Sincronización de letras activada" {
		t.Errorf("toast = %q", text)
	}

	f.transport.state.Position = 6 * time.Second
	f.send(t, TickMsg(time.Now()))
	if f.model.lyrics.Current != 1 {
		t.Errorf("current line = %d, expected 1", f.model.lyrics.Current)
	}
}

func TestCopyLyrics(t *testing.T) {
	f := newFixture(t)
	f.event(t, playback.EventData{Type: playback.EventTrackChanged, SongID: "2"})
	if cmd := f.press(t, "c"); cmd != nil {
		t.Error("nothing to copy before lyrics load")
	}

	l, _ := f.model.loader.Load(context.Background(), "2", "jp")
	f.send(t, LyricsLoadedMsg{SongID: "2", Lang: "jp", Lyrics: l})
	f.send(t, f.press(t, "c")())

	if len(f.copied) != 1 || f.copied[0] != "uno\ndos\ntres" {
		t.Errorf("copied = %q", f.copied)
	}
	if text, _ := f.model.Toast(); text != "Letras copiadas al portapapeles" {
		t.Errorf("toast = %q", text)
	}
}

func TestAnnounceOnlyAfterTrackChange(t *testing.T) {
	f := newFixture(t)

	f.event(t, playback.EventData{Type: playback.EventTrackChanged, SongID: "2"})
	f.event(t, playback.EventData{Type: playback.EventPlaying, SongID: "2"})
	if text, _ := f.model.Toast(); text != "Reproduciendo: 踊 (Odo)" {
		t.Fatalf("toast = %q", text)
	}

	f.model.toast = nil
	f.event(t, playback.EventData{Type: playback.EventPaused, SongID: "2"})
	f.event(t, playback.EventData{Type: playback.EventPlaying, SongID: "2"})
	if _, ok := f.model.Toast(); ok {
		t.Error("resuming should not announce again")
	}
}

func TestToastExpiry(t *testing.T) {
	f := newFixture(t)
	f.event(t, playback.EventData{Type: playback.EventShuffleChanged, Flag: true})
	first := f.model.toast.id

	f.event(t, playback.EventData{Type: playback.EventRepeatChanged, Flag: true})
	f.send(t, toastExpiredMsg{id: first})
	if text, ok := f.model.Toast(); !ok || text != "Repetición activada" {
		t.Errorf("an older expiry removed the newer toast: %q", text)
	}

	f.send(t, toastExpiredMsg{id: f.model.toast.id})
	if _, ok := f.model.Toast(); ok {
		t.Error("toast should expire")
	}
}

func TestSettingsPersistImmediately(t *testing.T) {
	f := newFixture(t)
	f.press(t, "o")
	if f.model.mode != modeSettings {
		t.Fatal("o should open settings")
	}

	f.press(t, "enter")
	if !f.prefs.Snapshot().AutoPlay {
		t.Error("auto-play should be on")
	}

	f.press(t, "down", "right", "right")
	if got := f.prefs.Snapshot().Crossfade; got != 5 {
		t.Errorf("crossfade = %d, expected 5", got)
	}
	for i := 0; i < 20; i++ {
		f.press(t, "left")
	}
	if got := f.prefs.Snapshot().Crossfade; got != 0 {
		t.Errorf("crossfade = %d, expected clamp at 0", got)
	}

	f.press(t, "down", "right")
	if got := f.prefs.Snapshot().Quality; got != "low" {
		t.Errorf("quality = %q, expected to wrap to low", got)
	}

	f.press(t, "esc")
	if f.model.mode != modeBrowse {
		t.Error("esc should close settings")
	}
}

func TestContextMenu(t *testing.T) {
	tests := []struct {
		name  string
		downs int
		toast string
	}{
		{"add to playlist", 2, playlistNotImplemented},
		{"download", 3, downloadNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.press(t, "x")
			if f.model.mode != modeMenu {
				t.Fatal("x should open the menu")
			}
			for i := 0; i < tt.downs; i++ {
				f.press(t, "down")
			}
			f.press(t, "enter")
			if text, _ := f.model.Toast(); text != tt.toast {
				t.Errorf("toast = %q, expected %q", text, tt.toast)
			}
			if f.model.mode != modeBrowse {
				t.Error("menu should close after an action")
			}
		})
	}
}

func TestContextMenuFavorite(t *testing.T) {
	f := newFixture(t)
	f.press(t, "x", "down", "enter")
	if !f.prefs.IsFavorite("1") {
		t.Error("menu favorite should toggle the selected song")
	}
}

func TestThemeToggle(t *testing.T) {
	f := newFixture(t)
	f.press(t, "t")
	if f.prefs.Theme() != prefs.ThemeDark {
		t.Errorf("theme = %q", f.prefs.Theme())
	}
	if ThemeFor(prefs.ThemeDark, nil).Name != prefs.ThemeDark {
		t.Error("dark theme not selected")
	}
	if ThemeFor("", nil).Name != prefs.ThemeLight {
		t.Error("unknown theme should fall back to light")
	}
}

func TestThemeMutedSitsBetweenTextAndSurface(t *testing.T) {
	for _, name := range []string{prefs.ThemeLight, prefs.ThemeDark} {
		t.Run(name, func(t *testing.T) {
			th := ThemeFor(name, nil)
			l := colors.GetLightness(th.Muted)
			lo, hi := colors.GetLightness(th.Text), colors.GetLightness(th.Surface)
			if lo > hi {
				lo, hi = hi, lo
			}
			if l <= lo || l >= hi {
				t.Errorf("muted %s lightness %.1f outside (%.1f, %.1f)", th.Muted, l, lo, hi)
			}
		})
	}
}

func TestAutoPlaySong(t *testing.T) {
	f := newFixture(t)
	if f.model.autoPlaySong() != "" {
		t.Error("auto-play off should not start anything")
	}
	if err := f.prefs.SetAutoPlay(true); err != nil {
		t.Fatal(err)
	}
	if got := f.model.autoPlaySong(); got != "1" {
		t.Errorf("autoPlaySong() = %q, expected 1", got)
	}
}

func TestSupersededPlayIsQuiet(t *testing.T) {
	f := newFixture(t)
	f.send(t, actionDoneMsg{action: "play", err: playback.ErrSuperseded})
	f.send(t, actionDoneMsg{action: "play", err: errors.New("boom")})
	if _, ok := f.model.Toast(); ok {
		t.Error("action errors surface through events, not toasts")
	}
}

func TestQuit(t *testing.T) {
	f := newFixture(t)
	cmd := f.press(t, "q")
	if !f.model.IsQuitting() || cmd == nil {
		t.Fatal("q should quit")
	}
	if f.model.View() != "" {
		t.Error("view should be empty while quitting")
	}
}

func TestViewRendersNowPlaying(t *testing.T) {
	f := newFixture(t)
	f.model.width = 120
	f.model.height = 40
	f.model.state = playback.State{SongID: "1", Playing: true, Volume: 1, Position: 65 * time.Second, Duration: 200 * time.Second, DurationKnown: true}

	view := f.model.View()
	for _, want := range []string{"Usseewa", "1:05", "3:20", "Todas", "Favoritos", "Recientes"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

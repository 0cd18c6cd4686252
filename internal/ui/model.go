package ui

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/encore/internal/artwork"
	"karolbroda.com/encore/internal/catalog"
	"karolbroda.com/encore/internal/config"
	"karolbroda.com/encore/internal/lyrics"
	"karolbroda.com/encore/internal/playback"
	"karolbroda.com/encore/internal/prefs"
	"karolbroda.com/encore/internal/terminal"
)

// Transport is the slice of the playback controller the UI drives.
type Transport interface {
	State() playback.State
	Play(ctx context.Context, songID string) error
	TogglePlayPause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(fraction float64) error
	SetVolume(v float64) error
	ToggleMute() bool
	ToggleShuffle() bool
	ToggleRepeat() bool
	ToggleFavorite(songID string) (bool, error)
}

type Preferences interface {
	Snapshot() prefs.Preferences
	ToggleTheme() (string, error)
	SetAutoPlay(on bool) error
	SetCrossfade(seconds int) error
	SetQuality(q string) error
}

type LyricsLoader interface {
	Load(ctx context.Context, songID string, lang string) (lyrics.Lyrics, error)
}

type FrameSource interface {
	Frame() []byte
}

type Notifier interface {
	Notify(title string, message string) bool
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeSettings
	modeMenu
)

type TickMsg time.Time

type PlayerEventMsg struct {
	Event playback.EventData
}

type LyricsLoadedMsg struct {
	SongID string
	Lang   string
	Lyrics lyrics.Lyrics
	Err    error
}

type ArtworkLoadedMsg struct {
	Image   image.Image
	Palette *artwork.Palette
	Err     error
}

type actionDoneMsg struct {
	action string
	err    error
}

type clipboardMsg struct {
	err error
}

type LyricsPanel struct {
	SongID  string
	Lang    string
	Lyrics  lyrics.Lyrics
	Lines   []string
	Err     error
	Loading bool
	Sync    bool
	Current int
}

type Model struct {
	ctx       context.Context
	transport Transport
	catalog   *catalog.Catalog
	prefs     Preferences
	loader    LyricsLoader
	frames    FrameSource
	notifier  Notifier
	clipboard func(string) error
	artwork   func(ctx context.Context) (image.Image, error)
	termCaps  *terminal.Capabilities
	logger    *slog.Logger

	events <-chan playback.EventData

	state     playback.State
	mode      mode
	tab       Tab
	cursor    int
	search    textinput.Model
	keys      keyMap
	help      help.Model
	settings  settingsModal
	menu      contextMenu
	lyrics    LyricsPanel
	announce  string
	toast     *toast
	toastSeq  int
	image     image.Image
	palette   *artwork.Palette
	width     int
	height    int
	tickCount int
	animState AnimState
	quitting  bool
}

type Config struct {
	Context    context.Context
	Transport  Transport
	Catalog    *catalog.Catalog
	Prefs      Preferences
	Lyrics     LyricsLoader
	Visualizer FrameSource
	Events     <-chan playback.EventData
	Notifier   Notifier
	// Clipboard defaults to the system clipboard.
	Clipboard  func(string) error
	Artwork    func(ctx context.Context) (image.Image, error)
	TermCaps   *terminal.Capabilities
	LyricsLang string
	Logger     *slog.Logger
}

func NewModel(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	copyFn := cfg.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	lang := cfg.LyricsLang
	if !lyrics.IsLanguage(lang) {
		lang = lyrics.DefaultLanguage
	}

	search := textinput.New()
	search.Placeholder = "Buscar canciones..."
	search.Prompt = "/ "
	search.CharLimit = 64

	m := Model{
		ctx:       ctx,
		transport: cfg.Transport,
		catalog:   cfg.Catalog,
		prefs:     cfg.Prefs,
		loader:    cfg.Lyrics,
		frames:    cfg.Visualizer,
		notifier:  cfg.Notifier,
		clipboard: copyFn,
		artwork:   cfg.Artwork,
		termCaps:  cfg.TermCaps,
		logger:    logger,
		events:    cfg.Events,
		search:    search,
		keys:      defaultKeyMap(),
		help:      help.New(),
		palette:   artwork.DefaultPalette(),
	}
	m.lyrics.Lang = lang
	m.lyrics.Current = -1
	if cfg.Transport != nil {
		m.state = cfg.Transport.State()
	}

	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(),
		m.listenForPlayerEvents(),
		m.loadArtworkCmd(),
	}

	if first := m.autoPlaySong(); first != "" {
		cmds = append(cmds, m.transportCmd("play", func(ctx context.Context) error {
			return m.transport.Play(ctx, first)
		}))
	}

	return tea.Batch(cmds...)
}

// autoPlaySong is the song to start with when auto-play is on.
func (m Model) autoPlaySong() string {
	if m.prefs == nil || m.transport == nil || m.catalog == nil {
		return ""
	}
	if !m.prefs.Snapshot().AutoPlay {
		return ""
	}
	ids := m.catalog.IDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func tickCmd() tea.Cmd {
	return tea.Tick(config.PollInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) listenForPlayerEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}

	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return PlayerEventMsg{Event: event}
	}
}

func (m Model) transportCmd(action string, fn func(ctx context.Context) error) tea.Cmd {
	if m.transport == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

func (m Model) loadLyricsCmd(songID string, lang string) tea.Cmd {
	if m.loader == nil || songID == "" {
		return nil
	}
	loader := m.loader
	ctx := m.ctx
	return func() tea.Msg {
		l, err := loader.Load(ctx, songID, lang)
		return LyricsLoadedMsg{SongID: songID, Lang: lang, Lyrics: l, Err: err}
	}
}

func (m Model) loadArtworkCmd() tea.Cmd {
	if m.artwork == nil {
		return nil
	}
	load := m.artwork
	ctx := m.ctx
	return func() tea.Msg {
		img, err := load(ctx)
		if err != nil {
			return ArtworkLoadedMsg{Err: err}
		}
		return ArtworkLoadedMsg{Image: img, Palette: artwork.ExtractPalette(img)}
	}
}

func (m Model) copyCmd(text string) tea.Cmd {
	copyFn := m.clipboard
	return func() tea.Msg {
		return clipboardMsg{err: copyFn(text)}
	}
}

func (m *Model) showToast(text string, kind toastKind) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toast = &toast{id: id, text: text, kind: kind}

	expire := tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
	if kind != toastFailure || m.notifier == nil {
		return expire
	}

	notifier := m.notifier
	return tea.Batch(expire, func() tea.Msg {
		notifier.Notify("encore", text)
		return nil
	})
}

func (m Model) preferences() prefs.Preferences {
	if m.prefs == nil {
		return prefs.Defaults()
	}
	return m.prefs.Snapshot()
}

func (m Model) rows() []Row {
	if m.catalog == nil {
		return nil
	}
	return Rows(m.catalog, m.preferences(), m.tab, m.search.Value(), m.state.SongID)
}

func (m Model) selected() (Row, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return Row{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) currentSong() (catalog.Song, bool) {
	if m.catalog == nil || m.state.SongID == "" {
		return catalog.Song{}, false
	}
	return m.catalog.Get(m.state.SongID)
}

func (m Model) songTitle(id string) string {
	if m.catalog == nil {
		return id
	}
	if s, ok := m.catalog.Get(id); ok && s.Title != "" {
		return s.Title
	}
	return id
}

func (m *Model) resetLyrics(songID string) {
	m.lyrics = LyricsPanel{
		SongID:  songID,
		Lang:    m.lyrics.Lang,
		Sync:    m.lyrics.Sync,
		Current: -1,
		Loading: songID != "" && m.loader != nil,
	}
	m.animState = AnimState{TransitionProgress: 1}
}

func (m *Model) updateLyricIndex() bool {
	idx := lyricLineAt(m.lyrics.Lyrics, len(m.lyrics.Lines), m.state.Position, m.state.Duration, m.state.DurationKnown)
	if idx == m.lyrics.Current {
		return false
	}
	m.lyrics.Current = idx
	if idx >= 0 {
		m.animState.TargetScrollY = float64(idx)
	}
	return true
}

func (m Model) Width() int                { return m.width }
func (m Model) Height() int               { return m.height }
func (m Model) State() playback.State     { return m.state }
func (m Model) Tab() Tab                  { return m.tab }
func (m Model) Cursor() int               { return m.cursor }
func (m Model) Query() string             { return m.search.Value() }
func (m Model) Lyrics() LyricsPanel       { return m.lyrics }
func (m Model) Palette() *artwork.Palette { return m.palette }
func (m Model) Image() image.Image        { return m.image }
func (m Model) TickCount() int            { return m.tickCount }
func (m Model) IsQuitting() bool          { return m.quitting }
func (m Model) AnimState() *AnimState     { return &m.animState }

// Toast returns the message currently shown, if any.
func (m Model) Toast() (string, bool) {
	if m.toast == nil {
		return "", false
	}
	return m.toast.text, true
}

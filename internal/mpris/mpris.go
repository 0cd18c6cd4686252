package mpris

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"karolbroda.com/encore/internal/catalog"
	"karolbroda.com/encore/internal/playback"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisRootIface   = "org.mpris.MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	trackPathPrefix  = "/org/mpris/MediaPlayer2/encore/track/"
	noTrackPath      = "/org/mpris/MediaPlayer2/TrackList/NoTrack"
	commandTimeout   = 10 * time.Second
)

const (
	StatusPlaying = "Playing"
	StatusPaused  = "Paused"
	StatusStopped = "Stopped"
	LoopNone      = "None"
	LoopTrack     = "Track"
)

var ErrNameTaken = errors.New("mpris bus name already taken")

// Player is the part of the playback controller the bus can drive.
type Player interface {
	State() playback.State
	TogglePlayPause(ctx context.Context) error
	Pause()
	Stop()
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(fraction float64) error
	SetVolume(v float64) error
	SetShuffle(on bool)
	SetRepeat(on bool)
}

type Options struct {
	Name    string
	Catalog *catalog.Catalog
	// ArtFile is a local image advertised as mpris:artUrl.
	ArtFile string
	// Quit is called for the root Quit method. Nil hides CanQuit.
	Quit   func()
	Logger *slog.Logger
}

// Exporter publishes a Player on the session bus.
type Exporter struct {
	conn    *dbus.Conn
	player  Player
	opts    Options
	props   *prop.Properties
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	stopped sync.Once
}

// Connect opens a private session bus connection.
func Connect() (*dbus.Conn, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return conn, nil
}

func NewExporter(conn *dbus.Conn, player Player, opts Options) (*Exporter, error) {
	if conn == nil {
		return nil, errors.New("nil dbus connection")
	}
	if player == nil {
		return nil, errors.New("nil player")
	}
	if opts.Name == "" {
		return nil, errors.New("empty mpris service name")
	}
	if opts.Catalog == nil {
		return nil, errors.New("nil catalog")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Exporter{
		conn:   conn,
		player: player,
		opts:   opts,
		logger: opts.Logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start exports the objects and claims the bus name.
func (e *Exporter) Start() error {
	root := &rootObject{quit: e.opts.Quit}
	player := &playerObject{player: e.player, ctx: e.ctx, logger: e.logger}

	if err := e.conn.Export(root, mprisPath, mprisRootIface); err != nil {
		return fmt.Errorf("failed to export root object: %w", err)
	}
	if err := e.conn.Export(player, mprisPath, mprisPlayerIface); err != nil {
		return fmt.Errorf("failed to export player object: %w", err)
	}

	props, err := prop.Export(e.conn, mprisPath, e.propertyMap(e.player.State()))
	if err != nil {
		return fmt.Errorf("failed to export properties: %w", err)
	}
	e.props = props

	node := &introspect.Node{
		Name: mprisPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       mprisRootIface,
				Methods:    introspect.Methods(root),
				Properties: props.Introspection(mprisRootIface),
			},
			{
				Name:       mprisPlayerIface,
				Methods:    introspect.Methods(player),
				Properties: props.Introspection(mprisPlayerIface),
				Signals: []introspect.Signal{{
					Name: "Seeked",
					Args: []introspect.Arg{{Name: "Position", Type: "x"}},
				}},
			},
		},
	}
	if err := e.conn.Export(introspect.NewIntrospectable(node), mprisPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspection: %w", err)
	}

	reply, err := e.conn.RequestName(e.opts.Name, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("%w: %s", ErrNameTaken, e.opts.Name)
	}

	e.logger.Info("mpris exported", "name", e.opts.Name)
	return nil
}

// Run mirrors controller events onto the bus until events closes or ctx is
// done.
func (e *Exporter) Run(ctx context.Context, events <-chan playback.EventData) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.Handle(ev)
		}
	}
}

// Handle refreshes the properties touched by ev.
func (e *Exporter) Handle(ev playback.EventData) {
	if e.props == nil {
		return
	}
	state := e.player.State()

	switch ev.Type {
	case playback.EventTrackChanged:
		e.set("Metadata", e.metadata(state))
		e.set("PlaybackStatus", PlaybackStatus(state))
	case playback.EventPlaying, playback.EventPaused, playback.EventPlaybackFailed,
		playback.EventResumeFailed, playback.EventTrackEnded:
		e.set("PlaybackStatus", PlaybackStatus(state))
		if state.DurationKnown {
			e.set("Metadata", e.metadata(state))
		}
	case playback.EventSeeked:
		pos := state.Position.Microseconds()
		e.props.SetMust(mprisPlayerIface, "Position", pos)
		if err := e.conn.Emit(mprisPath, mprisPlayerIface+".Seeked", pos); err != nil {
			e.logger.Debug("seeked signal failed", "error", err)
		}
	case playback.EventShuffleChanged:
		e.set("Shuffle", state.Shuffle)
	case playback.EventRepeatChanged:
		e.set("LoopStatus", LoopStatus(state.Repeat))
	case playback.EventVolumeChanged, playback.EventMuteChanged:
		e.set("Volume", EffectiveVolume(state))
	}
}

func (e *Exporter) set(name string, value any) {
	e.props.SetMust(mprisPlayerIface, name, value)
}

func (e *Exporter) Close() {
	e.stopped.Do(func() {
		e.cancel()
		if _, err := e.conn.ReleaseName(e.opts.Name); err != nil {
			e.logger.Debug("release name failed", "error", err)
		}
	})
}

func (e *Exporter) metadata(state playback.State) map[string]dbus.Variant {
	song, ok := e.opts.Catalog.Get(state.SongID)
	if !ok {
		return map[string]dbus.Variant{
			"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath(noTrackPath)),
		}
	}
	return Metadata(song, state.Duration, state.DurationKnown, artURL(e.opts.ArtFile))
}

func (e *Exporter) propertyMap(state playback.State) prop.Map {
	return prop.Map{
		mprisRootIface: {
			"CanQuit":             {Value: e.opts.Quit != nil, Emit: prop.EmitConst},
			"CanRaise":            {Value: false, Emit: prop.EmitConst},
			"HasTrackList":        {Value: false, Emit: prop.EmitConst},
			"Identity":            {Value: "encore", Emit: prop.EmitConst},
			"SupportedUriSchemes": {Value: []string{}, Emit: prop.EmitConst},
			"SupportedMimeTypes":  {Value: []string{"audio/mpeg", "audio/flac", "audio/wav"}, Emit: prop.EmitConst},
		},
		mprisPlayerIface: {
			"PlaybackStatus": {Value: PlaybackStatus(state), Emit: prop.EmitTrue},
			"LoopStatus": {
				Value:    LoopStatus(state.Repeat),
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: func(c *prop.Change) *dbus.Error {
					status, _ := c.Value.(string)
					e.player.SetRepeat(status == LoopTrack || status == "Playlist")
					return nil
				},
			},
			"Shuffle": {
				Value:    state.Shuffle,
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: func(c *prop.Change) *dbus.Error {
					on, _ := c.Value.(bool)
					e.player.SetShuffle(on)
					return nil
				},
			},
			"Volume": {
				Value:    EffectiveVolume(state),
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: func(c *prop.Change) *dbus.Error {
					v, _ := c.Value.(float64)
					if err := e.player.SetVolume(v); err != nil {
						return dbus.MakeFailedError(err)
					}
					return nil
				},
			},
			"Metadata":      {Value: e.metadata(state), Emit: prop.EmitTrue},
			"Position":      {Value: state.Position.Microseconds(), Emit: prop.EmitFalse},
			"Rate":          {Value: 1.0, Emit: prop.EmitConst},
			"MinimumRate":   {Value: 1.0, Emit: prop.EmitConst},
			"MaximumRate":   {Value: 1.0, Emit: prop.EmitConst},
			"CanGoNext":     {Value: true, Emit: prop.EmitConst},
			"CanGoPrevious": {Value: true, Emit: prop.EmitConst},
			"CanPlay":       {Value: true, Emit: prop.EmitConst},
			"CanPause":      {Value: true, Emit: prop.EmitConst},
			"CanSeek":       {Value: true, Emit: prop.EmitConst},
			"CanControl":    {Value: true, Emit: prop.EmitConst},
		},
	}
}

// Metadata builds the xesam/mpris map for song.
func Metadata(song catalog.Song, length time.Duration, known bool, art string) map[string]dbus.Variant {
	md := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(TrackPath(song.ID)),
		"xesam:title":   dbus.MakeVariant(song.Title),
		"xesam:url":     dbus.MakeVariant(catalog.AudioPath(song)),
	}
	if song.Artist != "" {
		md["xesam:artist"] = dbus.MakeVariant([]string{song.Artist})
	}
	if song.Info != "" {
		md["xesam:comment"] = dbus.MakeVariant([]string{song.Info})
	}
	if known && length > 0 {
		md["mpris:length"] = dbus.MakeVariant(length.Microseconds())
	}
	if art != "" {
		md["mpris:artUrl"] = dbus.MakeVariant(art)
	}
	return md
}

// TrackPath maps a song id onto a valid object path. Characters outside
// [A-Za-z0-9_] become underscores.
func TrackPath(songID string) dbus.ObjectPath {
	if songID == "" {
		return noTrackPath
	}
	var b strings.Builder
	for _, r := range songID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return dbus.ObjectPath(trackPathPrefix + b.String())
}

func PlaybackStatus(state playback.State) string {
	switch {
	case state.SongID == "":
		return StatusStopped
	case state.Playing:
		return StatusPlaying
	default:
		return StatusPaused
	}
}

func LoopStatus(repeat bool) string {
	if repeat {
		return LoopTrack
	}
	return LoopNone
}

func EffectiveVolume(state playback.State) float64 {
	if state.Muted {
		return 0
	}
	return state.Volume
}

func artURL(file string) string {
	if file == "" {
		return ""
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return ""
	}
	if _, err := os.Stat(abs); err != nil {
		return ""
	}
	return "file://" + abs
}

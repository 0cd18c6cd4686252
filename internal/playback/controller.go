package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"karolbroda.com/encore/internal/catalog"
	"karolbroda.com/encore/internal/media"
)

const (
	DefaultDriftThreshold = 150 * time.Millisecond
	DefaultWatchInterval  = 250 * time.Millisecond
	DefaultVolume         = 1.0
	eventBuffer           = 32
)

var (
	ErrUnknownSong     = errors.New("unknown song")
	ErrSuperseded      = errors.New("playback request superseded")
	ErrInvalidSeek     = errors.New("seek fraction must be within [0, 1]")
	ErrNothingLoaded   = errors.New("no song loaded")
	ErrUnknownDuration = errors.New("song duration unknown")
	ErrInvalidVolume   = errors.New("volume is not a number")
)

type ShufflePolicy int

const (
	// ShuffleAny draws from the whole catalog and may pick the current song.
	ShuffleAny ShufflePolicy = iota
	ShuffleExcludeCurrent
)

func ParseShufflePolicy(s string) (ShufflePolicy, error) {
	switch s {
	case "", "any":
		return ShuffleAny, nil
	case "exclude-current":
		return ShuffleExcludeCurrent, nil
	}
	return ShuffleAny, fmt.Errorf("unknown shuffle policy %q", s)
}

// Preferences is the part of the preference store the controller writes to.
type Preferences interface {
	AddRecent(id string) error
	ToggleFavorite(id string) (bool, error)
}

type Config struct {
	Catalog *catalog.Catalog
	Prefs   Preferences
	Audio   media.Element
	// Video follows the audio clock. Nil disables the companion video.
	Video          media.Element
	Output         media.Output
	Shuffle        ShufflePolicy
	Rand           *rand.Rand
	DriftThreshold time.Duration
	WatchInterval  time.Duration
	Logger         *slog.Logger
}

type State struct {
	SongID        string
	Playing       bool
	Shuffle       bool
	Repeat        bool
	Volume        float64
	Muted         bool
	Position      time.Duration
	Duration      time.Duration
	DurationKnown bool
	Generation    uint64
}

// Controller owns the transport: which song is current and how it plays.
type Controller struct {
	catalog *catalog.Catalog
	prefs   Preferences
	audio   media.Element
	video   media.Element
	output  media.Output
	policy  ShufflePolicy
	rng     *rand.Rand
	drift   time.Duration
	watch   time.Duration
	logger  *slog.Logger
	events  chan EventData

	mu          sync.Mutex
	songID      string
	playing     bool
	shuffle     bool
	repeat      bool
	volume      float64
	muted       bool
	generation  uint64
	cancelStart context.CancelFunc
}

func New(cfg Config) (*Controller, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("playback: catalog is required")
	}
	if cfg.Audio == nil {
		return nil, errors.New("playback: audio element is required")
	}
	if cfg.Output == nil {
		return nil, errors.New("playback: audio output is required")
	}

	c := &Controller{
		catalog: cfg.Catalog,
		prefs:   cfg.Prefs,
		audio:   cfg.Audio,
		video:   cfg.Video,
		output:  cfg.Output,
		policy:  cfg.Shuffle,
		rng:     cfg.Rand,
		drift:   cfg.DriftThreshold,
		watch:   cfg.WatchInterval,
		logger:  cfg.Logger,
		events:  make(chan EventData, eventBuffer),
		volume:  DefaultVolume,
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if c.drift <= 0 {
		c.drift = DefaultDriftThreshold
	}
	if c.watch <= 0 {
		c.watch = DefaultWatchInterval
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.audio.SetVolume(c.volume)
	if c.video != nil {
		c.video.SetVolume(c.volume)
	}
	return c, nil
}

func (c *Controller) Events() <-chan EventData {
	return c.events
}

func (c *Controller) emit(event EventData) {
	select {
	case c.events <- event:
	default:
		c.logger.Debug("event dropped", "event", event.Type.String())
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	s := State{
		SongID:     c.songID,
		Playing:    c.playing,
		Shuffle:    c.shuffle,
		Repeat:     c.repeat,
		Volume:     c.volume,
		Muted:      c.muted,
		Generation: c.generation,
	}
	c.mu.Unlock()

	if s.SongID != "" {
		s.Position = c.audio.Position()
		s.Duration, s.DurationKnown = c.audio.Duration()
	}
	return s
}

// Play makes songID current and starts it. The error is ErrSuperseded when a
// later request took over before this one finished starting.
func (c *Controller) Play(ctx context.Context, songID string) error {
	song, ok := c.catalog.Get(songID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSong, songID)
	}

	c.mu.Lock()
	gen, startCtx := c.beginLocked(ctx)
	c.songID = song.ID
	c.playing = false

	c.audio.Pause()
	if err := c.audio.Load(catalog.AudioPath(song)); err != nil {
		c.logger.Warn("audio source failed to load", "song", song.ID, "err", err)
	}
	_ = c.audio.SetPosition(0)
	if c.video != nil {
		c.video.Pause()
		if err := c.video.Load(catalog.VideoPath(song)); err != nil {
			c.logger.Warn("video source unavailable", "song", song.ID, "err", err)
		}
		_ = c.video.SetPosition(0)
	}
	wasMuted := c.muted
	c.muted = false
	c.audio.SetMuted(false)
	c.mu.Unlock()

	if wasMuted {
		c.emit(EventData{Type: EventMuteChanged, SongID: song.ID, Generation: gen, Flag: false})
	}

	if c.prefs != nil {
		if err := c.prefs.AddRecent(song.ID); err != nil {
			c.logger.Warn("failed to record recent song", "song", song.ID, "err", err)
		}
	}

	c.logger.Info("track changed", "song", song.ID, "generation", gen)
	c.emit(EventData{Type: EventTrackChanged, SongID: song.ID, Generation: gen})

	return c.start(startCtx, gen, song.ID)
}

// beginLocked starts a new request generation and cancels any start still in
// flight.
func (c *Controller) beginLocked(ctx context.Context) (uint64, context.Context) {
	if c.cancelStart != nil {
		c.cancelStart()
	}
	c.generation++
	startCtx, cancel := context.WithCancel(ctx)
	c.cancelStart = cancel
	return c.generation, startCtx
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

// start runs resume-then-play for generation gen.
func (c *Controller) start(ctx context.Context, gen uint64, songID string) error {
	if c.output.State() != media.OutputRunning {
		if err := c.output.Resume(ctx); err != nil {
			if !c.current(gen) {
				return ErrSuperseded
			}
			c.fail(gen)
			c.logger.Warn("audio output resume failed", "song", songID, "err", err)
			c.emit(EventData{Type: EventResumeFailed, SongID: songID, Generation: gen, Err: err})
			return fmt.Errorf("failed to resume audio output: %w", err)
		}
	}

	if !c.current(gen) {
		return ErrSuperseded
	}

	if err := c.audio.Play(ctx); err != nil {
		if !c.current(gen) {
			return ErrSuperseded
		}
		c.fail(gen)
		c.logger.Warn("playback failed", "song", songID, "err", err)
		c.emit(EventData{Type: EventPlaybackFailed, SongID: songID, Generation: gen, Err: err})
		return fmt.Errorf("failed to start playback: %w", err)
	}

	if c.video != nil {
		_ = c.video.SetPosition(c.audio.Position())
		if err := c.video.Play(ctx); err != nil {
			c.logger.Debug("video start failed", "song", songID, "err", err)
		}
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.playing = true
	c.mu.Unlock()

	c.emit(EventData{Type: EventPlaying, SongID: songID, Generation: gen})
	return nil
}

// fail leaves the transport paused while keeping the current song.
func (c *Controller) fail(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.playing = false
	c.audio.Pause()
	if c.video != nil {
		c.video.Pause()
	}
}

// TogglePlayPause resumes a paused song or pauses a playing one. It does
// nothing before the first song is loaded.
func (c *Controller) TogglePlayPause(ctx context.Context) error {
	c.mu.Lock()
	if c.songID == "" {
		c.mu.Unlock()
		return nil
	}
	songID := c.songID

	if c.playing {
		if c.cancelStart != nil {
			c.cancelStart()
		}
		c.generation++
		gen := c.generation
		c.playing = false
		c.audio.Pause()
		if c.video != nil {
			c.video.Pause()
		}
		c.mu.Unlock()

		c.emit(EventData{Type: EventPaused, SongID: songID, Generation: gen})
		return nil
	}

	gen, startCtx := c.beginLocked(ctx)
	c.mu.Unlock()
	return c.start(startCtx, gen, songID)
}

// Pause stops a playing song and is a no-op otherwise.
func (c *Controller) Pause() {
	c.mu.Lock()
	playing := c.playing
	c.mu.Unlock()
	if playing {
		_ = c.TogglePlayPause(context.Background())
	}
}

// Stop pauses and rewinds the current song.
func (c *Controller) Stop() {
	c.Pause()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.songID == "" {
		return
	}
	_ = c.audio.SetPosition(0)
	if c.video != nil {
		_ = c.video.SetPosition(0)
	}
}

func (c *Controller) Next(ctx context.Context) error {
	id, ok := c.pick(true)
	if !ok {
		return ErrNothingLoaded
	}
	return c.Play(ctx, id)
}

func (c *Controller) Previous(ctx context.Context) error {
	id, ok := c.pick(false)
	if !ok {
		return ErrNothingLoaded
	}
	return c.Play(ctx, id)
}

func (c *Controller) pick(forward bool) (string, bool) {
	c.mu.Lock()
	current := c.songID
	shuffle := c.shuffle
	c.mu.Unlock()

	if shuffle {
		return c.randomSong(current)
	}
	if forward {
		return c.catalog.Next(current)
	}
	return c.catalog.Previous(current)
}

func (c *Controller) randomSong(current string) (string, bool) {
	ids := c.catalog.IDs()
	if c.policy == ShuffleExcludeCurrent && len(ids) > 1 {
		if idx := c.catalog.IndexOf(current); idx >= 0 {
			ids = append(ids[:idx], ids[idx+1:]...)
		}
	}
	if len(ids) == 0 {
		return "", false
	}

	c.mu.Lock()
	n := c.rng.IntN(len(ids))
	c.mu.Unlock()
	return ids[n], true
}

// HandleEnd reacts to the audio reaching its natural end: rewind and replay
// under repeat, otherwise advance.
func (c *Controller) HandleEnd(ctx context.Context) error {
	c.mu.Lock()
	songID := c.songID
	repeat := c.repeat
	if songID == "" {
		c.mu.Unlock()
		return nil
	}
	c.playing = false
	c.mu.Unlock()

	c.emit(EventData{Type: EventTrackEnded, SongID: songID})

	if !repeat {
		return c.Next(ctx)
	}

	c.mu.Lock()
	gen, startCtx := c.beginLocked(ctx)
	_ = c.audio.SetPosition(0)
	if c.video != nil {
		_ = c.video.SetPosition(0)
	}
	c.mu.Unlock()

	return c.start(startCtx, gen, songID)
}

// Seek moves both elements to fraction of their own durations.
func (c *Controller) Seek(fraction float64) error {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) || fraction < 0 || fraction > 1 {
		return ErrInvalidSeek
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.songID == "" {
		return ErrNothingLoaded
	}
	d, ok := c.audio.Duration()
	if !ok || d <= 0 {
		return ErrUnknownDuration
	}

	if err := c.audio.SetPosition(time.Duration(fraction * float64(d))); err != nil {
		return fmt.Errorf("failed to seek audio: %w", err)
	}
	if c.video != nil {
		if vd, ok := c.video.Duration(); ok && vd > 0 {
			_ = c.video.SetPosition(time.Duration(fraction * float64(vd)))
		}
	}

	c.emit(EventData{Type: EventSeeked, SongID: c.songID, Generation: c.generation})
	return nil
}

func (c *Controller) SetVolume(v float64) error {
	if math.IsNaN(v) {
		return ErrInvalidVolume
	}
	v = max(0, min(1, v))

	c.mu.Lock()
	c.volume = v
	c.audio.SetVolume(v)
	if c.video != nil {
		c.video.SetVolume(v)
	}
	songID := c.songID
	c.mu.Unlock()

	c.emit(EventData{Type: EventVolumeChanged, SongID: songID, Volume: v})
	return nil
}

// ToggleMute flips the mute flag only; the volume level is kept.
func (c *Controller) ToggleMute() bool {
	c.mu.Lock()
	c.muted = !c.muted
	muted := c.muted
	c.audio.SetMuted(muted)
	songID := c.songID
	c.mu.Unlock()

	c.emit(EventData{Type: EventMuteChanged, SongID: songID, Flag: muted})
	return muted
}

func (c *Controller) ToggleShuffle() bool {
	c.mu.Lock()
	c.shuffle = !c.shuffle
	on := c.shuffle
	c.mu.Unlock()

	c.emit(EventData{Type: EventShuffleChanged, Flag: on})
	return on
}

func (c *Controller) SetShuffle(on bool) {
	c.mu.Lock()
	changed := c.shuffle != on
	c.mu.Unlock()
	if changed {
		c.ToggleShuffle()
	}
}

func (c *Controller) ToggleRepeat() bool {
	c.mu.Lock()
	c.repeat = !c.repeat
	on := c.repeat
	c.mu.Unlock()

	c.emit(EventData{Type: EventRepeatChanged, Flag: on})
	return on
}

func (c *Controller) SetRepeat(on bool) {
	c.mu.Lock()
	changed := c.repeat != on
	c.mu.Unlock()
	if changed {
		c.ToggleRepeat()
	}
}

// ToggleFavorite flips songID in the favorites. An empty id is ignored.
func (c *Controller) ToggleFavorite(songID string) (bool, error) {
	if songID == "" || c.prefs == nil {
		return false, nil
	}
	on, err := c.prefs.ToggleFavorite(songID)
	if err != nil {
		return on, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	c.emit(EventData{Type: EventFavoriteChanged, SongID: songID, Flag: on})
	return on, nil
}

// SyncFollower pulls the video back onto the audio clock once they drift
// apart by more than the threshold. It reports whether it corrected.
func (c *Controller) SyncFollower() bool {
	if c.video == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.songID == "" {
		return false
	}
	audioPos := c.audio.Position()
	diff := c.video.Position() - audioPos
	if diff < 0 {
		diff = -diff
	}
	if diff <= c.drift {
		return false
	}
	if vd, ok := c.video.Duration(); ok && audioPos > vd {
		return false
	}
	if err := c.video.SetPosition(audioPos); err != nil {
		c.logger.Debug("follower correction failed", "err", err)
		return false
	}
	return true
}

// Run forwards natural end-of-track into HandleEnd and keeps the video on the
// audio clock until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.watch)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.audio.Ended():
			if err := c.HandleEnd(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
				c.logger.Warn("end of track handling failed", "err", err)
			}
		case <-ticker.C:
			c.SyncFollower()
		}
	}
}

package media

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// Follower is the clock of the companion video. Nothing is decoded; the
// position advances with wall time while playing and the controller keeps it
// aligned with the audio.
type Follower struct {
	mu        sync.Mutex
	now       func() time.Time
	mediaRoot string
	duration  time.Duration
	leader    Element

	src       string
	missing   bool
	playing   bool
	base      time.Duration
	startedAt time.Time
	ended     chan struct{}
	level     float64
	muted     bool
}

type FollowerOptions struct {
	// MediaRoot is checked for the video file on Load; empty skips the check.
	MediaRoot string
	// Duration of the video; zero falls back to the leader's duration.
	Duration time.Duration
	Leader   Element
	Now      func() time.Time
}

func NewFollower(opts FollowerOptions) *Follower {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Follower{
		now:       now,
		mediaRoot: opts.MediaRoot,
		duration:  opts.Duration,
		leader:    opts.Leader,
		ended:     make(chan struct{}, 1),
		level:     1,
	}
}

func (f *Follower) Load(src string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.src = src
	f.playing = false
	f.base = 0
	f.missing = false

	if f.mediaRoot == "" {
		return nil
	}
	if _, err := os.Stat(ResolvePath(f.mediaRoot, src)); err != nil {
		f.missing = true
		return fmt.Errorf("%w: %s", ErrSourceMissing, src)
	}
	return nil
}

func (f *Follower) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.src == "" {
		return ErrNoSource
	}
	if f.missing {
		return fmt.Errorf("%w: %s", ErrSourceMissing, f.src)
	}
	if !f.playing {
		f.startedAt = f.now()
		f.playing = true
	}
	return nil
}

func (f *Follower) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.playing {
		f.base = f.positionLocked()
		f.playing = false
	}
}

func (f *Follower) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.playing
}

func (f *Follower) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.positionLocked()
}

func (f *Follower) positionLocked() time.Duration {
	pos := f.base
	if f.playing {
		pos += f.now().Sub(f.startedAt)
	}
	if d, ok := f.durationLocked(); ok && pos > d {
		pos = d
	}
	return pos
}

func (f *Follower) SetPosition(d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.src == "" {
		return ErrNoSource
	}
	if d < 0 {
		d = 0
	}
	f.base = d
	f.startedAt = f.now()
	return nil
}

func (f *Follower) Duration() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.durationLocked()
}

func (f *Follower) durationLocked() (time.Duration, bool) {
	if f.src == "" {
		return 0, false
	}
	if f.duration > 0 {
		return f.duration, true
	}
	if f.leader != nil {
		return f.leader.Duration()
	}
	return 0, false
}

func (f *Follower) SetVolume(v float64) {
	f.mu.Lock()
	f.level = clamp01(v)
	f.mu.Unlock()
}

func (f *Follower) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

func (f *Follower) SetMuted(muted bool) {
	f.mu.Lock()
	f.muted = muted
	f.mu.Unlock()
}

func (f *Follower) Muted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted
}

func (f *Follower) Ended() <-chan struct{} {
	return f.ended
}

func (f *Follower) Close() error {
	f.mu.Lock()
	f.src = ""
	f.playing = false
	f.mu.Unlock()
	return nil
}

var _ Element = (*Follower)(nil)

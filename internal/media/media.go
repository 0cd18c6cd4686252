// Package media holds the playable elements the controller drives: the local
// audio element, the companion video follower and the output they play on.
package media

import (
	"context"
	"errors"
	"time"
)

type OutputState int

const (
	OutputSuspended OutputState = iota
	OutputRunning
	OutputClosed
)

func (s OutputState) String() string {
	switch s {
	case OutputSuspended:
		return "suspended"
	case OutputRunning:
		return "running"
	case OutputClosed:
		return "closed"
	}
	return "unknown"
}

var (
	ErrNoSource         = errors.New("no media source loaded")
	ErrSourceMissing    = errors.New("media source not found")
	ErrUnsupportedMedia = errors.New("unsupported media format")
	ErrOutputSuspended  = errors.New("audio output is suspended")
	ErrOutputClosed     = errors.New("audio output is closed")
	ErrAudioUnavailable = errors.New("audio output not available in this build")
)

// Element is one playable media source with its own clock.
type Element interface {
	Load(src string) error
	Play(ctx context.Context) error
	Pause()
	Paused() bool
	Position() time.Duration
	SetPosition(d time.Duration) error
	// Duration reports false while the length is unknown.
	Duration() (time.Duration, bool)
	SetVolume(v float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool
	// Ended receives once each time the loaded source plays to its end.
	Ended() <-chan struct{}
	Close() error
}

// Output is the device path audio plays through. It starts suspended and must
// be resumed before the first sound.
type Output interface {
	State() OutputState
	Resume(ctx context.Context) error
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

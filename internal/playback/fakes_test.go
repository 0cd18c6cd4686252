package playback

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"karolbroda.com/encore/internal/media"
)

type fakeElement struct {
	mu        sync.Mutex
	src       string
	paused    bool
	pos       time.Duration
	dur       time.Duration
	durKnown  bool
	volume    float64
	muted     bool
	playErr   error
	loadErr   error
	playCalls int
	ended     chan struct{}

	// blockNext makes the next Play wait until it is closed or ctx ends.
	blockNext chan struct{}
	entered   chan struct{}
}

func newFakeElement(dur time.Duration) *fakeElement {
	return &fakeElement{
		paused:   true,
		dur:      dur,
		durKnown: dur > 0,
		volume:   1,
		ended:    make(chan struct{}, 1),
	}
}

func (f *fakeElement) Load(src string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.src = src
	f.pos = 0
	f.paused = true
	return f.loadErr
}

func (f *fakeElement) Play(ctx context.Context) error {
	f.mu.Lock()
	f.playCalls++
	block := f.blockNext
	f.blockNext = nil
	entered := f.entered
	f.mu.Unlock()

	if block != nil {
		if entered != nil {
			close(entered)
		}
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.paused = false
	return nil
}

func (f *fakeElement) Pause() {
	f.mu.Lock()
	f.paused = true
	f.mu.Unlock()
}

func (f *fakeElement) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *fakeElement) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakeElement) SetPosition(d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = d
	return nil
}

func (f *fakeElement) Duration() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dur, f.durKnown
}

func (f *fakeElement) SetVolume(v float64) {
	f.mu.Lock()
	f.volume = v
	f.mu.Unlock()
}

func (f *fakeElement) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *fakeElement) SetMuted(m bool) {
	f.mu.Lock()
	f.muted = m
	f.mu.Unlock()
}

func (f *fakeElement) Muted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted
}

func (f *fakeElement) Ended() <-chan struct{} { return f.ended }

func (f *fakeElement) Close() error { return nil }

func (f *fakeElement) source() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.src
}

func (f *fakeElement) setPlayErr(err error) {
	f.mu.Lock()
	f.playErr = err
	f.mu.Unlock()
}

type fakeOutput struct {
	mu          sync.Mutex
	state       media.OutputState
	resumeErr   error
	resumeCalls int
}

func (o *fakeOutput) State() media.OutputState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *fakeOutput) Resume(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resumeCalls++
	if o.resumeErr != nil {
		return o.resumeErr
	}
	o.state = media.OutputRunning
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// drain returns every event currently buffered.
func drain(c *Controller) []EventData {
	var out []EventData
	for {
		select {
		case e := <-c.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func hasEvent(events []EventData, typ Event) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

package visualizer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultFPS = 60

var ErrAlreadyStarted = errors.New("visualizer already started")

// SampleSource yields the most recent n mono samples of the audio output.
type SampleSource interface {
	Samples(n int) []float64
}

type Options struct {
	FFTSize int
	FPS     int
	// OnFrame, when set, is called after each frame with a copy of the buffer.
	OnFrame func(frame []byte)
}

// Visualizer runs a free-running analysis loop over a SampleSource. It keeps
// running whatever the transport does; silence yields near-zero bins.
type Visualizer struct {
	source   SampleSource
	analyser *Analyser
	interval time.Duration
	onFrame  func([]byte)
	started  atomic.Bool

	mu    sync.RWMutex
	frame []byte
}

func New(source SampleSource, opts Options) *Visualizer {
	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	a := NewAnalyser(opts.FFTSize)
	return &Visualizer{
		source:   source,
		analyser: a,
		interval: time.Second / time.Duration(fps),
		onFrame:  opts.OnFrame,
		frame:    make([]byte, a.BinCount()),
	}
}

func (v *Visualizer) BinCount() int { return v.analyser.BinCount() }

// Start launches the frame loop. It may be called once per Visualizer.
func (v *Visualizer) Start(ctx context.Context) error {
	if !v.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go v.loop(ctx)
	return nil
}

func (v *Visualizer) loop(ctx context.Context) {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.Tick()
		}
	}
}

// Tick computes one frame.
func (v *Visualizer) Tick() {
	samples := v.source.Samples(v.analyser.FFTSize())

	v.mu.Lock()
	v.analyser.Process(samples)
	v.analyser.ByteFrequencyData(v.frame)
	var snapshot []byte
	if v.onFrame != nil {
		snapshot = append([]byte(nil), v.frame...)
	}
	v.mu.Unlock()

	if snapshot != nil {
		v.onFrame(snapshot)
	}
}

// Frame returns a copy of the current frame buffer.
func (v *Visualizer) Frame() []byte {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]byte(nil), v.frame...)
}

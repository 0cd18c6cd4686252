package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

const resampleQuality = 4

// AudioElement plays one decoded file at a time through a SpeakerOutput.
type AudioElement struct {
	mu        sync.Mutex
	output    *SpeakerOutput
	mediaRoot string
	tap       *Tap

	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	queued   bool
	paused   bool
	loadSeq  uint64
	ended    chan struct{}

	level float64
	muted bool
}

// NewAudioElement resolves sources like "/static/music/x.mp3" against
// mediaRoot. tap may be nil.
func NewAudioElement(output *SpeakerOutput, mediaRoot string, tap *Tap) *AudioElement {
	return &AudioElement{
		output:    output,
		mediaRoot: mediaRoot,
		tap:       tap,
		paused:    true,
		ended:     make(chan struct{}, 1),
		level:     1,
	}
}

// ResolvePath maps a /static/... URL path onto the media root.
func ResolvePath(mediaRoot, src string) string {
	rel := strings.TrimPrefix(src, "/static/")
	rel = strings.TrimPrefix(rel, "/")
	return filepath.Join(mediaRoot, filepath.FromSlash(rel))
}

func decode(path string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".wav":
		return wav.Decode(f)
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, filepath.Ext(path))
}

func (e *AudioElement) Load(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.loadSeq++
	e.unloadLocked()
	e.drainEnded()
	if e.tap != nil {
		e.tap.Reset()
	}

	path := ResolvePath(e.mediaRoot, src)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return err
	}

	streamer, format, err := decode(path, f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode %s: %w", src, err)
	}

	e.file = f
	e.streamer = streamer
	e.format = format
	e.paused = true
	return nil
}

func (e *AudioElement) unloadLocked() {
	if e.ctrl != nil {
		speakerLock()
		e.ctrl.Paused = true
		e.ctrl.Streamer = nil
		speakerUnlock()
	}
	if e.streamer != nil {
		e.streamer.Close()
	}
	if e.file != nil {
		e.file.Close()
	}
	e.file = nil
	e.streamer = nil
	e.ctrl = nil
	e.volume = nil
	e.queued = false
	e.paused = true
}

func (e *AudioElement) drainEnded() {
	select {
	case <-e.ended:
	default:
	}
}

func (e *AudioElement) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return ErrNoSource
	}
	switch e.output.State() {
	case OutputSuspended:
		return ErrOutputSuspended
	case OutputClosed:
		return ErrOutputClosed
	}

	if !e.queued {
		e.queueLocked()
	} else {
		speakerLock()
		e.ctrl.Paused = false
		speakerUnlock()
	}
	e.paused = false
	return nil
}

// queueLocked builds a fresh pipeline for the loaded stream and hands it to
// the speaker. A stream that already ran to completion is queued again this
// way after a rewind.
func (e *AudioElement) queueLocked() {
	speakerLock()
	if e.streamer.Position() >= e.streamer.Len() {
		_ = e.streamer.Seek(0)
	}
	speakerUnlock()

	var s beep.Streamer = e.streamer
	if e.format.SampleRate != e.output.SampleRate() {
		s = beep.Resample(resampleQuality, e.format.SampleRate, e.output.SampleRate(), s)
	}
	e.ctrl = &beep.Ctrl{Streamer: s, Paused: false}
	e.volume = &effects.Volume{Streamer: e.ctrl, Base: 2}
	e.applyVolumeLocked()

	var out beep.Streamer = e.volume
	if e.tap != nil {
		out = e.tap.Wrap(out)
	}

	seq := e.loadSeq
	speakerPlay(beep.Seq(out, beep.Callback(func() {
		// the mixer holds the speaker lock here
		go e.signalEnd(seq)
	})))
	e.queued = true
}

func (e *AudioElement) signalEnd(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.loadSeq || !e.queued {
		return
	}
	e.queued = false
	e.paused = true
	e.ctrl = nil
	e.volume = nil

	select {
	case e.ended <- struct{}{}:
	default:
	}
}

func (e *AudioElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = true
	if e.ctrl != nil {
		speakerLock()
		e.ctrl.Paused = true
		speakerUnlock()
	}
}

func (e *AudioElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *AudioElement) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return 0
	}
	speakerLock()
	pos := e.streamer.Position()
	speakerUnlock()
	return e.format.SampleRate.D(pos)
}

func (e *AudioElement) SetPosition(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return ErrNoSource
	}
	if d < 0 {
		d = 0
	}

	speakerLock()
	defer speakerUnlock()

	samples := e.format.SampleRate.N(d)
	if length := e.streamer.Len(); length > 0 && samples >= length {
		samples = length - 1
	}
	return e.streamer.Seek(samples)
}

func (e *AudioElement) Duration() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return 0, false
	}
	length := e.streamer.Len()
	if length <= 0 {
		return 0, false
	}
	return e.format.SampleRate.D(length), true
}

func (e *AudioElement) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.level = clamp01(v)
	e.applyVolumeLocked()
}

func (e *AudioElement) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

func (e *AudioElement) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = muted
	e.applyVolumeLocked()
}

func (e *AudioElement) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// applyVolumeLocked maps the linear level onto the base-2 gain exponent that
// effects.Volume expects.
func (e *AudioElement) applyVolumeLocked() {
	if e.volume == nil {
		return
	}
	speakerLock()
	defer speakerUnlock()

	e.volume.Silent = e.muted || e.level <= 0
	if e.level > 0 {
		e.volume.Volume = math.Log2(e.level)
	}
}

func (e *AudioElement) Ended() <-chan struct{} {
	return e.ended
}

func (e *AudioElement) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadSeq++
	e.unloadLocked()
	return nil
}

var _ Element = (*AudioElement)(nil)

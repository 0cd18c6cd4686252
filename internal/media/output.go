package media

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)
	defaultBuffer     = time.Second / 10
)

// SpeakerOutput is the process-wide beep speaker. It is not opened until the
// first Resume, so nothing touches the sound device before a user asks for
// playback.
type SpeakerOutput struct {
	mu         sync.Mutex
	state      OutputState
	sampleRate beep.SampleRate
	bufferSize time.Duration
}

func NewSpeakerOutput(rate beep.SampleRate, bufferSize time.Duration) *SpeakerOutput {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if bufferSize <= 0 {
		bufferSize = defaultBuffer
	}
	return &SpeakerOutput{
		state:      OutputSuspended,
		sampleRate: rate,
		bufferSize: bufferSize,
	}
}

func (o *SpeakerOutput) State() OutputState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *SpeakerOutput) SampleRate() beep.SampleRate {
	return o.sampleRate
}

func (o *SpeakerOutput) Resume(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case OutputRunning:
		return nil
	case OutputClosed:
		return ErrOutputClosed
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := speakerInit(o.sampleRate, o.bufferSize); err != nil {
		return err
	}
	o.state = OutputRunning
	return nil
}

func (o *SpeakerOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == OutputRunning {
		speakerClear()
		speakerClose()
	}
	o.state = OutputClosed
	return nil
}

//go:build !((linux && cgo) || windows || darwin)

package media

import (
	"time"

	"github.com/gopxl/beep/v2"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = false

func speakerInit(beep.SampleRate, time.Duration) error { return ErrAudioUnavailable }

func speakerPlay(beep.Streamer) {}

func speakerLock() {}

func speakerUnlock() {}

func speakerClear() {}

func speakerClose() {}

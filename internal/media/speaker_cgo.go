//go:build (linux && cgo) || windows || darwin

package media

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

func speakerInit(rate beep.SampleRate, bufferSize time.Duration) error {
	return speaker.Init(rate, rate.N(bufferSize))
}

func speakerPlay(s beep.Streamer) { speaker.Play(s) }

func speakerLock() { speaker.Lock() }

func speakerUnlock() { speaker.Unlock() }

func speakerClear() { speaker.Clear() }

func speakerClose() { speaker.Close() }

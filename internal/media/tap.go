package media

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

// Tap is a ring buffer holding a mono mix of whatever audio pipeline is
// currently playing. The visualizer reads from it.
type Tap struct {
	mu   sync.Mutex
	buf  []float64
	pos  int
	size int
}

func NewTap(bufSize int) *Tap {
	if bufSize <= 0 {
		bufSize = 4096
	}
	return &Tap{
		buf:  make([]float64, bufSize),
		size: bufSize,
	}
}

// Wrap returns a new streamer that passes s through and records it into the
// tap. Each pipeline gets its own wrapper, so a stale one still draining in the
// mixer only ever pulls from its own source.
func (t *Tap) Wrap(s beep.Streamer) beep.Streamer {
	return &tapStreamer{s: s, tap: t}
}

type tapStreamer struct {
	s   beep.Streamer
	tap *Tap
}

func (ts *tapStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := ts.s.Stream(samples)
	ts.tap.Write(samples[:n])
	return n, ok
}

func (ts *tapStreamer) Err() error {
	return ts.s.Err()
}

// Write records stereo frames without passing them anywhere.
func (t *Tap) Write(samples [][2]float64) {
	t.mu.Lock()
	for i := range samples {
		t.buf[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % t.size
	}
	t.mu.Unlock()
}

// Samples returns the last n samples in chronological order.
func (t *Tap) Samples(n int) []float64 {
	if n > t.size {
		n = t.size
	}
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	t.mu.Lock()
	start := (t.pos - n + t.size) % t.size
	for i := range n {
		out[i] = t.buf[(start+i)%t.size]
	}
	t.mu.Unlock()
	return out
}

// Reset fills the buffer with silence.
func (t *Tap) Reset() {
	t.mu.Lock()
	clear(t.buf)
	t.pos = 0
	t.mu.Unlock()
}

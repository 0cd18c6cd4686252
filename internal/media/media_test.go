package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTapSamplesInOrder(t *testing.T) {
	tap := NewTap(4)
	tap.Write([][2]float64{{1, 1}, {2, 2}, {3, 3}})
	tap.Write([][2]float64{{4, 4}, {5, 5}})

	got := tap.Samples(4)
	expected := []float64{2, 3, 4, 5}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Samples(4) = %v, expected %v", got, expected)
		}
	}

	if got := tap.Samples(10); len(got) != 4 {
		t.Errorf("Samples clamps to buffer size, got %d", len(got))
	}
}

func TestTapMonoMix(t *testing.T) {
	tap := NewTap(2)
	tap.Write([][2]float64{{1, -1}, {0.5, 0.25}})
	got := tap.Samples(2)
	if got[0] != 0 || got[1] != 0.375 {
		t.Errorf("Samples = %v", got)
	}

	tap.Reset()
	for _, v := range tap.Samples(2) {
		if v != 0 {
			t.Errorf("Reset left %v", v)
		}
	}
}

func constant(v float64, calls *int) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if calls != nil {
			*calls++
		}
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

func TestTapWrapIsPerPipeline(t *testing.T) {
	tap := NewTap(4)
	var aCalls, bCalls int
	oldPipe := tap.Wrap(constant(0.5, &aCalls))
	newPipe := tap.Wrap(constant(-0.5, &bCalls))
	if oldPipe == newPipe {
		t.Fatal("each Wrap should return its own streamer")
	}

	buf := make([][2]float64, 4)
	tests := []struct {
		name     string
		pipe     beep.Streamer
		expected float64
	}{
		{"new pipeline", newPipe, -0.5},
		{"stale pipeline drains its own source", oldPipe, 0.5},
		{"new pipeline again", newPipe, -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tt.pipe.Stream(buf)
			if n != 4 || !ok {
				t.Fatalf("Stream = %d, %v", n, ok)
			}
			for i, v := range buf {
				if v[0] != tt.expected {
					t.Fatalf("sample %d = %v, expected %v", i, v[0], tt.expected)
				}
			}
			for _, v := range tap.Samples(4) {
				if v != tt.expected {
					t.Fatalf("tap = %v, expected %v", tap.Samples(4), tt.expected)
				}
			}
		})
	}
	if aCalls != 1 || bCalls != 2 {
		t.Errorf("source calls a=%d b=%d, expected 1 and 2", aCalls, bCalls)
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		root, src, expected string
	}{
		{"/srv/static", "/static/music/odo.mp3", "/srv/static/music/odo.mp3"},
		{"media", "/static/videos/odo_video.mp4", "media/videos/odo_video.mp4"},
		{"media", "music/a.mp3", "media/music/a.mp3"},
	}
	for _, tt := range tests {
		if got := ResolvePath(tt.root, tt.src); got != filepath.FromSlash(tt.expected) {
			t.Errorf("ResolvePath(%q, %q) = %q", tt.root, tt.src, got)
		}
	}
}

func TestFollowerClock(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	f := NewFollower(FollowerOptions{Duration: 10 * time.Second, Now: clock.now})

	if err := f.Play(context.Background()); !errors.Is(err, ErrNoSource) {
		t.Fatalf("Play without source = %v", err)
	}

	_ = f.Load("/static/videos/a_video.mp4")
	if err := f.Play(context.Background()); err != nil {
		t.Fatal(err)
	}
	clock.advance(2 * time.Second)
	if got := f.Position(); got != 2*time.Second {
		t.Errorf("Position = %v, expected 2s", got)
	}

	f.Pause()
	clock.advance(5 * time.Second)
	if got := f.Position(); got != 2*time.Second {
		t.Errorf("paused Position = %v, expected 2s", got)
	}

	_ = f.SetPosition(9 * time.Second)
	_ = f.Play(context.Background())
	clock.advance(5 * time.Second)
	if got := f.Position(); got != 10*time.Second {
		t.Errorf("Position = %v, expected clamp at 10s", got)
	}
}

func TestFollowerDurationFromLeader(t *testing.T) {
	leader := NewFollower(FollowerOptions{Duration: 3 * time.Minute})
	_ = leader.Load("/static/music/a.mp3")

	f := NewFollower(FollowerOptions{Leader: leader})
	if _, ok := f.Duration(); ok {
		t.Error("duration should be unknown before load")
	}
	_ = f.Load("/static/videos/a_video.mp4")
	d, ok := f.Duration()
	if !ok || d != 3*time.Minute {
		t.Errorf("Duration = %v, %v", d, ok)
	}
}

func TestFollowerMissingFile(t *testing.T) {
	root := t.TempDir()
	f := NewFollower(FollowerOptions{MediaRoot: root})

	if err := f.Load("/static/videos/nope_video.mp4"); !errors.Is(err, ErrSourceMissing) {
		t.Errorf("Load = %v, expected ErrSourceMissing", err)
	}
	if err := f.Play(context.Background()); !errors.Is(err, ErrSourceMissing) {
		t.Errorf("Play = %v, expected ErrSourceMissing", err)
	}

	_ = os.MkdirAll(filepath.Join(root, "videos"), 0755)
	_ = os.WriteFile(filepath.Join(root, "videos", "yes_video.mp4"), []byte("x"), 0644)
	if err := f.Load("/static/videos/yes_video.mp4"); err != nil {
		t.Errorf("Load existing = %v", err)
	}
}

func TestAudioElementLoadErrors(t *testing.T) {
	root := t.TempDir()
	out := NewSpeakerOutput(0, 0)
	e := NewAudioElement(out, root, nil)

	if err := e.Play(context.Background()); !errors.Is(err, ErrNoSource) {
		t.Errorf("Play without source = %v", err)
	}
	if err := e.Load("/static/music/missing.mp3"); !errors.Is(err, ErrSourceMissing) {
		t.Errorf("Load missing = %v", err)
	}

	_ = os.MkdirAll(filepath.Join(root, "music"), 0755)
	_ = os.WriteFile(filepath.Join(root, "music", "notes.txt"), []byte("x"), 0644)
	if err := e.Load("/static/music/notes.txt"); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("Load txt = %v", err)
	}
	if _, ok := e.Duration(); ok {
		t.Error("duration should be unknown without a source")
	}
}

func TestAudioElementFailedLoadClearsTap(t *testing.T) {
	tap := NewTap(8)
	tap.Write([][2]float64{{0.8, 0.8}, {-0.8, -0.8}, {0.8, 0.8}})
	e := NewAudioElement(NewSpeakerOutput(0, 0), t.TempDir(), tap)

	if err := e.Load("/static/music/missing.mp3"); !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("Load missing = %v", err)
	}
	for i, v := range tap.Samples(8) {
		if v != 0 {
			t.Fatalf("sample %d = %v after failed load, expected silence", i, v)
		}
	}
}

func writeWav(t *testing.T, path string, d time.Duration) {
	t.Helper()
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := wav.Encode(f, beep.Take(format.SampleRate.N(d), constant(0.25, nil)), format); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
}

func TestAudioElementWavSeek(t *testing.T) {
	root := t.TempDir()
	writeWav(t, filepath.Join(root, "music", "tone.wav"), 2*time.Second)

	e := NewAudioElement(NewSpeakerOutput(0, 0), root, nil)
	defer e.Close()
	if err := e.Load("/static/music/tone.wav"); err != nil {
		t.Fatalf("Load = %v", err)
	}

	d, ok := e.Duration()
	if !ok || d < 1990*time.Millisecond || d > 2010*time.Millisecond {
		t.Fatalf("Duration = %v, %v, expected about 2s", d, ok)
	}
	if !e.Paused() {
		t.Error("a freshly loaded source should be paused")
	}

	tests := []struct {
		name   string
		target time.Duration
		lo, hi time.Duration
	}{
		{"start", 0, 0, 0},
		{"middle", d / 2, d/2 - time.Millisecond, d/2 + time.Millisecond},
		{"past the end clamps", 10 * time.Second, d - 10*time.Millisecond, d - 1},
		{"negative clamps to zero", -time.Second, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.SetPosition(tt.target); err != nil {
				t.Fatalf("SetPosition(%v) = %v", tt.target, err)
			}
			if got := e.Position(); got < tt.lo || got > tt.hi {
				t.Errorf("Position = %v, expected within [%v, %v]", got, tt.lo, tt.hi)
			}
		})
	}
}

func TestAudioElementVolumeState(t *testing.T) {
	e := NewAudioElement(NewSpeakerOutput(0, 0), t.TempDir(), nil)
	e.SetVolume(1.7)
	if e.Volume() != 1 {
		t.Errorf("Volume = %v, expected clamp to 1", e.Volume())
	}
	e.SetMuted(true)
	if !e.Muted() || e.Volume() != 1 {
		t.Error("mute must not change the volume level")
	}
}

func TestSpeakerOutputStartsSuspended(t *testing.T) {
	out := NewSpeakerOutput(0, 0)
	if out.State() != OutputSuspended {
		t.Errorf("State = %v", out.State())
	}
	_ = out.Close()
	if err := out.Resume(context.Background()); !errors.Is(err, ErrOutputClosed) {
		t.Errorf("Resume after close = %v", err)
	}
}

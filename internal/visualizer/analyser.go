package visualizer

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	DefaultFFTSize   = 256
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0
)

// Analyser turns a window of samples into byte magnitudes per frequency bin,
// using a Blackman window, exponential smoothing between frames and a fixed
// decibel range mapped onto 0..255.
type Analyser struct {
	fftSize   int
	fft       *fourier.FFT
	window    []float64
	smoothing float64
	minDB     float64
	maxDB     float64

	in       []float64
	coeffs   []complex128
	smoothed []float64
}

func NewAnalyser(fftSize int) *Analyser {
	if fftSize < 32 || fftSize&(fftSize-1) != 0 {
		fftSize = DefaultFFTSize
	}
	return &Analyser{
		fftSize:   fftSize,
		fft:       fourier.NewFFT(fftSize),
		window:    blackman(fftSize),
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDB,
		maxDB:     DefaultMaxDB,
		in:        make([]float64, fftSize),
		coeffs:    make([]complex128, fftSize/2+1),
		smoothed:  make([]float64, fftSize/2),
	}
}

func (a *Analyser) FFTSize() int { return a.fftSize }

func (a *Analyser) BinCount() int { return a.fftSize / 2 }

// Process analyses the most recent FFTSize samples. Shorter input is treated
// as preceded by silence.
func (a *Analyser) Process(samples []float64) {
	if len(samples) > a.fftSize {
		samples = samples[len(samples)-a.fftSize:]
	}
	pad := a.fftSize - len(samples)
	for i := range a.in {
		v := 0.0
		if i >= pad {
			v = samples[i-pad]
		}
		a.in[i] = v * a.window[i]
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.in)

	scale := 1 / float64(a.fftSize)
	for k := range a.smoothed {
		mag := cmplx.Abs(a.coeffs[k]) * scale
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
	}
}

// ByteFrequencyData writes BinCount magnitudes into dst.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	rangeDB := a.maxDB - a.minDB
	for k := range min(len(dst), len(a.smoothed)) {
		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		v := 255 * (db - a.minDB) / rangeDB
		switch {
		case math.IsNaN(v) || v < 0:
			dst[k] = 0
		case v > 255:
			dst[k] = 255
		default:
			dst[k] = byte(v)
		}
	}
}

func blackman(n int) []float64 {
	const alpha = 0.16
	a0 := (1 - alpha) / 2
	a1 := 0.5
	a2 := alpha / 2

	w := make([]float64, n)
	for i := range w {
		x := float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return w
}

package spectral

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps mjibson/go-dsp for real-valued blocks. go-dsp handles any length,
// although the analyzer only ever passes powers of two.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute returns the full complex spectrum of x
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// HalfMagnitudes returns |X[k]|/scale for k in [0, len(x)/2). Non-finite
// magnitudes are reported as 0.
func (f *FFT) HalfMagnitudes(x []float64, scale float64) []float64 {
	half := len(x) / 2
	mags := make([]float64, half)
	if half == 0 || scale == 0 {
		return mags
	}

	coeffs := f.Compute(x)
	for k := range half {
		m := cmplx.Abs(coeffs[k]) / scale
		if math.IsNaN(m) || math.IsInf(m, 0) {
			m = 0
		}
		mags[k] = m
	}
	return mags
}

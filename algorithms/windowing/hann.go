package windowing

import (
	"fmt"

	"github.com/mjibson/go-dsp/window"
)

// Hann represents a symmetric Hann (raised-cosine) window
//
//	w[i] = 0.5 * (1 - cos(2πi/(N-1)))
//
// A one-point window is defined as w[0] = 1.
type Hann struct {
	size         int
	coefficients []float64
}

// NewHann creates a new Hann window of the given size
func NewHann(size int) *Hann {
	h := &Hann{size: max(size, 0)}
	h.generate()
	return h
}

func (h *Hann) generate() {
	switch h.size {
	case 0:
		h.coefficients = []float64{}
	case 1:
		h.coefficients = []float64{1}
	default:
		h.coefficients = window.Hann(h.size)
	}
}

// Apply applies the window to a signal (creates new array)
func (h *Hann) Apply(signal []float64) ([]float64, error) {
	if len(signal) != h.size {
		return nil, fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	windowed := make([]float64, h.size)
	for i := range h.size {
		windowed[i] = signal[i] * h.coefficients[i]
	}

	return windowed, nil
}

// ApplyInto writes the windowed signal into dst, which must hold Size() values
func (h *Hann) ApplyInto(dst, signal []float64) error {
	if len(signal) != h.size || len(dst) != h.size {
		return fmt.Errorf("buffer lengths (%d, %d) don't match window size (%d)", len(dst), len(signal), h.size)
	}

	for i := range h.size {
		dst[i] = signal[i] * h.coefficients[i]
	}

	return nil
}

// Coefficients returns a copy of the window coefficients
func (h *Hann) Coefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// Size returns the window size
func (h *Hann) Size() int {
	return h.size
}

// ApplyHann windows signal with a Hann window of matching length and returns
// the result as a new slice.
func ApplyHann(signal []float64) []float64 {
	windowed, _ := NewHann(len(signal)).Apply(signal)
	return windowed
}

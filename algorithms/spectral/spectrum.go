package spectral

import (
	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
)

// Spectrum is the magnitude spectrum of one analysis block. Frequencies are
// ascending bin centres in Hz; Magnitudes has the same length.
type Spectrum struct {
	Frequencies []float64 `json:"frequencies"`
	Magnitudes  []float64 `json:"magnitudes"`
	FFTSize     int       `json:"fft_size"`
	SampleRate  int       `json:"sample_rate"`
}

// Len returns the number of bins
func (s Spectrum) Len() int {
	return len(s.Magnitudes)
}

// IsEmpty reports whether the spectrum carries no bins
func (s Spectrum) IsEmpty() bool {
	return len(s.Magnitudes) == 0
}

// BinWidth returns the frequency resolution in Hz per bin
func (s Spectrum) BinWidth() float64 {
	if s.FFTSize == 0 {
		return 0
	}
	return float64(s.SampleRate) / float64(s.FFTSize)
}

// AnalyzerParams configures the spectral analyzer
type AnalyzerParams struct {
	// MinTransformSize is the smallest block that is transformed; shorter
	// input yields an empty Spectrum
	MinTransformSize int `json:"min_transform_size" yaml:"min_transform_size"`
}

// DefaultAnalyzerParams returns the default analyzer parameters
func DefaultAnalyzerParams() AnalyzerParams {
	return AnalyzerParams{MinTransformSize: 4}
}

// Analyzer computes magnitude spectra of sample blocks. It keeps no state
// between calls.
type Analyzer struct {
	params AnalyzerParams
	fft    *FFT
}

// NewAnalyzer creates a spectral analyzer
func NewAnalyzer(params AnalyzerParams) *Analyzer {
	if params.MinTransformSize < 2 {
		params.MinTransformSize = 2
	}
	return &Analyzer{
		params: params,
		fft:    NewFFT(),
	}
}

// Analyze truncates signal to the largest power-of-two length it holds, applies
// a Hann window and returns the first half of the magnitude spectrum. Bin i
// sits at i*sampleRate/n and its magnitude is |X[i]|/(n/2).
func (a *Analyzer) Analyze(signal []float64, sampleRate int) Spectrum {
	n := common.PrevPowerOfTwo(len(signal))
	if sampleRate <= 0 || n < a.params.MinTransformSize {
		return Spectrum{Frequencies: []float64{}, Magnitudes: []float64{}, SampleRate: max(sampleRate, 0)}
	}

	half := n / 2
	spectrum := Spectrum{
		Frequencies: make([]float64, half),
		Magnitudes:  a.fft.HalfMagnitudes(windowing.ApplyHann(signal[:n]), float64(half)),
		FFTSize:     n,
		SampleRate:  sampleRate,
	}
	for i := range half {
		spectrum.Frequencies[i] = float64(i) * float64(sampleRate) / float64(n)
	}

	return spectrum
}

// DominantFrequency returns the frequency of the strongest non-DC bin, or 0
// when the spectrum is empty or silent.
func (s Spectrum) DominantFrequency() float64 {
	best := 0
	bestMag := 0.0
	for i := 1; i < len(s.Magnitudes); i++ {
		if s.Magnitudes[i] > bestMag {
			bestMag = s.Magnitudes[i]
			best = i
		}
	}
	if best == 0 {
		return 0
	}
	return s.Frequencies[best]
}

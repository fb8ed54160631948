package effects

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
	"gonum.org/v1/gonum/dsp/fourier"
)

// PitchShiftParams configures the phase vocoder
type PitchShiftParams struct {
	WindowSize      int     `json:"window_size" yaml:"window_size"`           // power of two
	HopDivisor      int     `json:"hop_divisor" yaml:"hop_divisor"`           // hop = WindowSize / HopDivisor
	Headroom        float64 `json:"headroom" yaml:"headroom"`                 // output peak after normalization
	MaxSemitones    float64 `json:"max_semitones" yaml:"max_semitones"`       // |semitones| bound
	IdentityEpsilon float64 `json:"identity_epsilon" yaml:"identity_epsilon"` // below this the input is copied
}

// DefaultPitchShiftParams returns the vocoder defaults
func DefaultPitchShiftParams() PitchShiftParams {
	return PitchShiftParams{
		WindowSize:      2048,
		HopDivisor:      8,
		Headroom:        0.95,
		MaxSemitones:    12,
		IdentityEpsilon: 1e-3,
	}
}

// PitchShifter changes pitch with a phase vocoder. The frame position in the
// input advances by factor per output hop, so the output is len/factor samples
// long and is meant to be played back at the original sample rate.
//
// All phase state lives in the Shift call; a PitchShifter may be shared.
type PitchShifter struct {
	params PitchShiftParams
	hop    int
	window *windowing.Hann
}

// NewPitchShifter creates a pitch shifter. Invalid window or hop settings fall
// back to the defaults.
func NewPitchShifter(params PitchShiftParams) *PitchShifter {
	defaults := DefaultPitchShiftParams()
	if params.WindowSize < 4 || !common.IsPowerOfTwo(params.WindowSize) {
		params.WindowSize = defaults.WindowSize
	}
	if params.HopDivisor <= 0 {
		params.HopDivisor = defaults.HopDivisor
	}
	if params.MaxSemitones <= 0 {
		params.MaxSemitones = defaults.MaxSemitones
	}
	if params.Headroom <= 0 || params.Headroom > 1 {
		params.Headroom = defaults.Headroom
	}

	hop := max(params.WindowSize/params.HopDivisor, 1)

	return &PitchShifter{
		params: params,
		hop:    hop,
		window: windowing.NewHann(params.WindowSize),
	}
}

// Params returns the effective parameters
func (ps *PitchShifter) Params() PitchShiftParams {
	return ps.params
}

// ClampSemitones bounds semitones to ±MaxSemitones; NaN becomes 0
func (ps *PitchShifter) ClampSemitones(semitones float64) float64 {
	if math.IsNaN(semitones) {
		return 0
	}
	return common.Clamp(semitones, -ps.params.MaxSemitones, ps.params.MaxSemitones)
}

// Shift returns signal shifted by semitones. Failures inside the transform are
// returned as *ShiftError; the caller decides what to substitute.
func (ps *PitchShifter) Shift(signal []float64, semitones float64, sampleRate int) (output []float64, err error) {
	if len(signal) == 0 || sampleRate <= 0 {
		return []float64{}, nil
	}

	semitones = ps.ClampSemitones(semitones)
	if math.Abs(semitones) < ps.params.IdentityEpsilon {
		output = make([]float64, len(signal))
		copy(output, signal)
		return output, nil
	}

	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = &ShiftError{Semitones: semitones, Cause: fmt.Errorf("panic in phase vocoder: %v", r)}
		}
	}()

	factor := math.Pow(2, semitones/12)
	output, err = ps.vocode(signal, factor)
	if err != nil {
		return nil, &ShiftError{Semitones: semitones, Cause: err}
	}

	for i, v := range output {
		if !common.IsFinite(v) {
			return nil, &ShiftError{
				Semitones: semitones,
				Cause:     fmt.Errorf("non-finite output sample at index %d", i),
			}
		}
	}

	if peak := common.MaxAbs(output); peak > 0 {
		gain := ps.params.Headroom / peak
		for i := range output {
			output[i] *= gain
		}
	}

	return output, nil
}

func (ps *PitchShifter) vocode(signal []float64, factor float64) ([]float64, error) {
	n := len(signal)
	size := ps.params.WindowSize
	hop := ps.hop
	numBins := size/2 + 1

	outLen := int(math.Round(float64(n) / factor))
	if outLen <= 0 {
		return []float64{}, nil
	}

	fft := fourier.NewFFT(size)
	raw := make([]float64, size)
	frame := make([]float64, size)
	spectrum := make([]complex128, numBins)
	synthesis := make([]complex128, numBins)
	resynth := make([]float64, size)

	analysisPhase := make([]float64, numBins)
	synthPhase := make([]float64, numBins)
	shiftedMag := make([]float64, numBins)
	shiftedFreq := make([]float64, numBins)
	sourcePhase := make([]float64, numBins)

	accum := make([]float64, outLen+size)
	lastStart := max(0, n-size)
	prevStart := 0
	first := true
	scale := 1.0 / float64(size)

	for outPos := 0; outPos < outLen; outPos += hop {
		start := int(math.Round(float64(outPos) * factor))
		start = min(max(start, 0), lastStart)

		clear(raw)
		copy(raw, signal[start:min(start+size, n)])
		if err := ps.window.ApplyInto(frame, raw); err != nil {
			return nil, err
		}
		spectrum = fft.Coefficients(spectrum, frame)

		advance := float64(start - prevStart)
		for k := range numBins {
			shiftedMag[k] = 0
			shiftedFreq[k] = 0
		}

		for k := range numBins {
			mag := cmplx.Abs(spectrum[k])
			phase := cmplx.Phase(spectrum[k])

			// radians per sample
			omega := 2 * math.Pi * float64(k) / float64(size)
			if !first && advance > 0 {
				deviation := wrapPhase(phase - analysisPhase[k] - omega*advance)
				omega += deviation / advance
			}
			analysisPhase[k] = phase

			target := int(math.Round(float64(k) * factor))
			if target >= numBins {
				continue
			}
			shiftedMag[target] += mag
			shiftedFreq[target] = omega * factor
			sourcePhase[target] = phase
		}

		for k := range numBins {
			if first {
				synthPhase[k] = sourcePhase[k]
			} else {
				synthPhase[k] = wrapPhase(synthPhase[k] + shiftedFreq[k]*float64(hop))
			}
			synthesis[k] = cmplx.Rect(shiftedMag[k], synthPhase[k])
		}

		resynth = fft.Sequence(resynth, synthesis)
		if err := ps.window.ApplyInto(resynth, resynth); err != nil {
			return nil, err
		}
		for i, v := range resynth {
			accum[outPos+i] += v * scale
		}

		prevStart = start
		first = false
	}

	return accum[:outLen], nil
}

// wrapPhase maps phase into [-π, π)
func wrapPhase(phase float64) float64 {
	return phase - 2*math.Pi*math.Floor((phase+math.Pi)/(2*math.Pi))
}

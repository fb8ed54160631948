package effects

import (
	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// NoiseReducerParams configures the amplitude gate
type NoiseReducerParams struct {
	Scale          float64 `json:"scale" yaml:"scale"`                     // threshold at 100% in fixed mode
	Adaptive       bool    `json:"adaptive" yaml:"adaptive"`               // derive scale from signal RMS
	AdaptiveFactor float64 `json:"adaptive_factor" yaml:"adaptive_factor"` // scale = factor * RMS
	Ceiling        float64 `json:"ceiling" yaml:"ceiling"`                 // upper bound on the threshold
	Attenuation    float64 `json:"attenuation" yaml:"attenuation"`         // gain applied below threshold, [0,1)
}

// DefaultNoiseReducerParams returns the fixed-threshold gate defaults
func DefaultNoiseReducerParams() NoiseReducerParams {
	return NoiseReducerParams{
		Scale:          0.05,
		Adaptive:       false,
		AdaptiveFactor: 0.5,
		Ceiling:        0.05,
		Attenuation:    0.1,
	}
}

// NoiseReducer attenuates low-magnitude samples. It is a sample-level gate,
// not a spectral denoiser.
type NoiseReducer struct {
	params NoiseReducerParams
}

// NewNoiseReducer creates a noise reducer; attenuation is clamped to [0, 1)
func NewNoiseReducer(params NoiseReducerParams) *NoiseReducer {
	if params.Attenuation < 0 || !common.IsFinite(params.Attenuation) {
		params.Attenuation = 0
	}
	if params.Attenuation >= 1 {
		params.Attenuation = DefaultNoiseReducerParams().Attenuation
	}
	return &NoiseReducer{params: params}
}

// Threshold returns the gate threshold for signal at the given amount (percent)
func (nr *NoiseReducer) Threshold(signal []float64, amount float64) float64 {
	amount = ClampAmount(amount)
	if amount == 0 {
		return 0
	}

	scale := nr.params.Scale
	if nr.params.Adaptive {
		scale = nr.params.AdaptiveFactor * common.RMS(signal)
	}

	threshold := amount / 100 * scale
	if nr.params.Ceiling > 0 && threshold > nr.params.Ceiling {
		threshold = nr.params.Ceiling
	}
	if threshold < 0 || !common.IsFinite(threshold) {
		return 0
	}
	return threshold
}

// Reduce returns a copy of signal with samples below the threshold attenuated.
// amount is a percentage clamped to [0, 100]; 0 returns an unchanged copy.
func (nr *NoiseReducer) Reduce(signal []float64, amount float64) []float64 {
	output := make([]float64, len(signal))
	copy(output, signal)

	threshold := nr.Threshold(signal, amount)
	if threshold == 0 {
		return output
	}

	for i, x := range output {
		if x < threshold && x > -threshold {
			output[i] = x * nr.params.Attenuation
		}
	}
	return output
}

// ClampAmount bounds a noise reduction percentage to [0, 100]; non-finite values become 0
func ClampAmount(amount float64) float64 {
	if !common.IsFinite(amount) {
		return 0
	}
	return common.Clamp(amount, 0, 100)
}

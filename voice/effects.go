package voice

import (
	"github.com/RyanBlaney/sonido-voz/transcode"
)

// EffectParameters are the user-facing controls for the effects chain. Each
// transform clamps its own value.
type EffectParameters struct {
	NoiseReductionAmount float64 `json:"noise_reduction_amount"` // percent, [0, 100]
	PitchShiftSemitones  float64 `json:"pitch_shift_semitones"`  // ±MaxSemitones
	Gain                 float64 `json:"gain"`                   // linear, [0, MaxGain]
}

// DefaultEffectParameters leaves the signal unchanged
func DefaultEffectParameters() EffectParameters {
	return EffectParameters{
		NoiseReductionAmount: 0,
		PitchShiftSemitones:  0,
		Gain:                 1,
	}
}

// EffectsResult is the processed buffer plus what was actually applied
type EffectsResult struct {
	Buffer  *transcode.SampleBuffer `json:"-"`
	Applied EffectParameters        `json:"applied"` // after clamping

	// Degraded is set when the pitch shift failed and was skipped
	Degraded bool  `json:"degraded"`
	ShiftErr error `json:"-"`
}

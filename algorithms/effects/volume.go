package effects

import (
	"math"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// DefaultMaxGain is the largest linear gain the adjuster applies
const DefaultMaxGain = 3.0

// VolumeAdjuster applies a linear gain followed by a hard clip to [-1, 1]
type VolumeAdjuster struct {
	maxGain float64
}

// NewVolumeAdjuster creates a volume adjuster; a non-positive maxGain selects the default
func NewVolumeAdjuster(maxGain float64) *VolumeAdjuster {
	if maxGain <= 0 || !common.IsFinite(maxGain) {
		maxGain = DefaultMaxGain
	}
	return &VolumeAdjuster{maxGain: maxGain}
}

// ClampGain maps gain into [0, maxGain]; non-finite values become unity
func (va *VolumeAdjuster) ClampGain(gain float64) float64 {
	if !common.IsFinite(gain) {
		return 1
	}
	return common.Clamp(gain, 0, va.maxGain)
}

// Adjust returns a scaled and clipped copy of signal
func (va *VolumeAdjuster) Adjust(signal []float64, gain float64) []float64 {
	gain = va.ClampGain(gain)

	output := make([]float64, len(signal))
	for i, x := range signal {
		if math.IsNaN(x) {
			continue
		}
		output[i] = common.Clamp(x*gain, -1, 1)
	}
	return output
}

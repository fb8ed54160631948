package temporal

import (
	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// DefaultAmplitudeCeiling is the RMS value reported as full loudness
const DefaultAmplitudeCeiling = 0.5

// Energy computes frame-wise energy for a fixed frame and hop size
type Energy struct {
	frameSize int
	hopSize   int
}

// NewEnergy creates a new energy calculator
func NewEnergy(frameSize, hopSize int) *Energy {
	return &Energy{
		frameSize: frameSize,
		hopSize:   hopSize,
	}
}

// ComputeShortTimeEnergy calculates RMS energy per frame. Trailing samples
// that do not fill a whole frame are ignored.
func (e *Energy) ComputeShortTimeEnergy(signal []float64) []float64 {
	if len(signal) < e.frameSize || e.hopSize <= 0 || e.frameSize <= 0 {
		return []float64{}
	}

	numFrames := (len(signal)-e.frameSize)/e.hopSize + 1
	energies := make([]float64, numFrames)

	for i := range numFrames {
		start := i * e.hopSize
		energies[i] = common.RMS(signal[start : start+e.frameSize])
	}

	return energies
}

// FrameRMS is shorthand for NewEnergy(frameSize, hop).ComputeShortTimeEnergy(signal)
func FrameRMS(signal []float64, frameSize, hop int) []float64 {
	return NewEnergy(frameSize, hop).ComputeShortTimeEnergy(signal)
}

// AmplitudeMeter reports overall loudness as RMS relative to a ceiling,
// clamped to [0, 1]
type AmplitudeMeter struct {
	ceiling float64
}

// NewAmplitudeMeter creates a meter; a non-positive ceiling selects the default
func NewAmplitudeMeter(ceiling float64) *AmplitudeMeter {
	if ceiling <= 0 || !common.IsFinite(ceiling) {
		ceiling = DefaultAmplitudeCeiling
	}
	return &AmplitudeMeter{ceiling: ceiling}
}

// Ceiling returns the RMS value that maps to 1
func (m *AmplitudeMeter) Ceiling() float64 {
	return m.ceiling
}

// Amplitude returns clamp(RMS(signal)/ceiling, 0, 1); empty input yields 0
func (m *AmplitudeMeter) Amplitude(signal []float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}
	rms := common.RMS(signal)
	if !common.IsFinite(rms) {
		return 0.0
	}
	return common.Clamp(rms/m.ceiling, 0, 1)
}

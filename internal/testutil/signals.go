package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// LinearSweep generates a constant-amplitude sine sweeping linearly from
// startHz to endHz over length samples.
func LinearSweep(startHz, endHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	if length == 0 {
		return out
	}
	duration := float64(length) / sampleRate
	k := (endHz - startHz) / duration
	for i := range out {
		t := float64(i) / sampleRate
		out[i] = amplitude * math.Sin(2*math.Pi*(startHz*t+0.5*k*t*t))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Harmonic generates a tone with the given fundamental and harmonic amplitudes
// (amps[0] is the fundamental).
func Harmonic(f0, sampleRate float64, amps []float64, length int) []float64 {
	out := make([]float64, length)
	for h, a := range amps {
		step := 2 * math.Pi * f0 * float64(h+1) / sampleRate
		for i := range out {
			out[i] += a * math.Sin(step*float64(i))
		}
	}
	return out
}

// Scale returns a copy of data multiplied by k.
func Scale(data []float64, k float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v * k
	}
	return out
}

// RMS returns the root mean square of data.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(data)))
}

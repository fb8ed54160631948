package transcode

import (
	"time"
)

// SampleBuffer is an immutable block of mono samples in [-1, 1]. Every
// transform produces a new buffer; accessors hand out copies.
type SampleBuffer struct {
	samples    []float32
	sampleRate int
}

// NewSampleBuffer copies samples into a new buffer
func NewSampleBuffer(samples []float32, sampleRate int) *SampleBuffer {
	owned := make([]float32, len(samples))
	copy(owned, samples)
	return &SampleBuffer{samples: owned, sampleRate: sampleRate}
}

// FromFloat64 builds a buffer from float64 samples, the representation the
// algorithms work in
func FromFloat64(samples []float64, sampleRate int) *SampleBuffer {
	owned := make([]float32, len(samples))
	for i, v := range samples {
		owned[i] = float32(v)
	}
	return &SampleBuffer{samples: owned, sampleRate: sampleRate}
}

// Samples returns a copy of the samples
func (b *SampleBuffer) Samples() []float32 {
	if b == nil {
		return []float32{}
	}
	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	return out
}

// Float64s returns the samples widened to float64
func (b *SampleBuffer) Float64s() []float64 {
	if b == nil {
		return []float64{}
	}
	out := make([]float64, len(b.samples))
	for i, v := range b.samples {
		out[i] = float64(v)
	}
	return out
}

// Len returns the number of samples
func (b *SampleBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.samples)
}

// SampleRate returns the sample rate in Hz
func (b *SampleBuffer) SampleRate() int {
	if b == nil {
		return 0
	}
	return b.sampleRate
}

// Duration returns the playback length at the buffer's sample rate
func (b *SampleBuffer) Duration() time.Duration {
	if b == nil || b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / time.Duration(b.sampleRate)
}

// IsEmpty reports whether the buffer holds no samples
func (b *SampleBuffer) IsEmpty() bool {
	return b.Len() == 0
}

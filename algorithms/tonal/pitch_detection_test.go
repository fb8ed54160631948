package tonal

import (
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-voz/internal/testutil"
)

func TestDetectPitchPureSine(t *testing.T) {
	t.Parallel()

	const sr = 16000
	pd := NewPitchDetector(DefaultPitchDetectionParams())

	signal := testutil.DeterministicSine(220, sr, 0.5, sr)
	result := pd.Detect(signal, sr)

	if result.Method != FrequencyDomainHPS {
		t.Fatalf("method = %v, want hps", result.Method)
	}
	if math.Abs(result.Pitch-220) > 5 {
		t.Fatalf("pitch = %v, want 220±5", result.Pitch)
	}
}

func TestDetectPitchHarmonicVoice(t *testing.T) {
	t.Parallel()

	const sr = 16000
	pd := NewPitchDetector(DefaultPitchDetectionParams())

	// voiced-like tone with a strong second harmonic
	signal := testutil.Harmonic(150, sr, []float64{0.3, 0.4, 0.2, 0.1}, sr)
	if got := pd.DetectPitch(signal, sr); math.Abs(got-150) > 5 {
		t.Fatalf("pitch = %v, want 150±5", got)
	}
}

func TestDetectPitchShortFrameUsesAutocorrelation(t *testing.T) {
	t.Parallel()

	const sr = 16000
	pd := NewPitchDetector(DefaultPitchDetectionParams())

	signal := testutil.DeterministicSine(200, sr, 0.5, 640)
	result := pd.Detect(signal, sr)

	if result.Method != AutocorrelationACF {
		t.Fatalf("method = %v, want acf", result.Method)
	}
	if math.Abs(result.Pitch-200) > 5 {
		t.Fatalf("pitch = %v, want 200±5", result.Pitch)
	}
}

func TestDetectPitchOutOfBandFallback(t *testing.T) {
	t.Parallel()

	const sr = 16000
	pd := NewPitchDetector(DefaultPitchDetectionParams())

	// 1000 Hz is outside the voice band but is the only candidate
	signal := testutil.DeterministicSine(1000, sr, 0.5, 4096)
	if got := pd.DetectPitch(signal, sr); math.Abs(got-1000) > 5 {
		t.Fatalf("pitch = %v, want 1000±5", got)
	}
}

func TestDetectPitchDegenerate(t *testing.T) {
	t.Parallel()

	pd := NewPitchDetector(DefaultPitchDetectionParams())
	tests := []struct {
		name       string
		signal     []float64
		sampleRate int
	}{
		{name: "empty", signal: nil, sampleRate: 16000},
		{name: "single sample", signal: []float64{0.3}, sampleRate: 16000},
		{name: "zero rate", signal: make([]float64, 2048), sampleRate: 0},
		{name: "silence long", signal: make([]float64, 4096), sampleRate: 16000},
		{name: "silence short", signal: make([]float64, 512), sampleRate: 16000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := pd.DetectPitch(tt.signal, tt.sampleRate); got != 0 {
				t.Fatalf("DetectPitch = %v, want 0", got)
			}
		})
	}
}

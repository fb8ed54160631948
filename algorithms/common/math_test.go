package common

import (
	"math"
	"testing"
)

func TestPrevPowerOfTwo(t *testing.T) {
	t.Parallel()

	tests := []struct{ n, want int }{
		{n: -3, want: 0},
		{n: 0, want: 0},
		{n: 1, want: 1},
		{n: 3, want: 2},
		{n: 1024, want: 1024},
		{n: 16000, want: 8192},
	}
	for _, tt := range tests {
		if got := PrevPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("PrevPowerOfTwo(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestRMSAndMeanSquare(t *testing.T) {
	t.Parallel()

	data := []float64{0.5, -0.5, 0.5, -0.5}
	if got := RMS(data); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("RMS = %v, want 0.5", got)
	}
	if got := MeanSquare(data); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("MeanSquare = %v, want 0.25", got)
	}
	if RMS(nil) != 0 || MeanSquare(nil) != 0 || Mean(nil) != 0 {
		t.Error("empty input must yield 0")
	}
}

func TestMaxAbsAndClamp(t *testing.T) {
	t.Parallel()

	if got := MaxAbs([]float64{0.1, -0.7, 0.3}); got != 0.7 {
		t.Errorf("MaxAbs = %v, want 0.7", got)
	}
	if got := Clamp(3, 0, 1); got != 1 {
		t.Errorf("Clamp high = %v", got)
	}
	if got := Clamp(-3, 0, 1); got != 0 {
		t.Errorf("Clamp low = %v", got)
	}
}

func TestParabolicPeak(t *testing.T) {
	t.Parallel()

	// samples of -(x-2.25)^2 around x=2
	data := make([]float64, 5)
	for i := range data {
		d := float64(i) - 2.25
		data[i] = -d * d
	}
	if got := ParabolicPeak(data, 2); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("ParabolicPeak = %v, want 0.25", got)
	}
	if got := ParabolicPeak(data, 0); got != 0 {
		t.Errorf("edge ParabolicPeak = %v, want 0", got)
	}
}

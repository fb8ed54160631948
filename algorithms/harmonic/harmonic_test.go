package harmonic

import (
	"testing"

	"github.com/RyanBlaney/sonido-voz/internal/testutil"
)

func TestComputeHPSSkipsMissingHarmonics(t *testing.T) {
	t.Parallel()

	mags := []float64{1, 2, 3, 4, 5, 6, 7}
	got := NewHarmonicProduct(3, 1).ComputeHPS(mags)

	want := []float64{
		1 * 1 * 1, // bin 0 multiplies itself
		2 * 3 * 4, // bins 1,2,3
		3 * 5 * 7, // bins 2,4,6
		4 * 7,     // bin 9 is missing
		5,         // bins 8,12 missing
		6,
		7,
	}
	testutil.RequireSliceNearlyEqual(t, got, want, 0)
}

func TestComputeHPSAmplification(t *testing.T) {
	t.Parallel()

	got := NewHarmonicProduct(2, 10).ComputeHPS([]float64{0.1, 0.2, 0.3})
	want := []float64{1 * 1, 2 * 3, 3}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestComputeHPSEmpty(t *testing.T) {
	t.Parallel()

	if got := NewHarmonicProduct(3, 1).ComputeHPS(nil); len(got) != 0 {
		t.Fatalf("ComputeHPS(nil) = %v", got)
	}
}

func TestFindLocalMaxima(t *testing.T) {
	t.Parallel()

	values := []float64{5, 1, 3, 1, 2, 2, 1, 4, 0}
	got := FindLocalMaxima(values, 0)
	want := []int{2, 7} // plateau at 4/5 is not strict, edges excluded
	if len(got) != len(want) {
		t.Fatalf("FindLocalMaxima = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FindLocalMaxima = %v, want %v", got, want)
		}
	}

	if got := FindLocalMaxima(values, 3.5); len(got) != 1 || got[0] != 7 {
		t.Fatalf("thresholded maxima = %v, want [7]", got)
	}
}

func TestRankPeaksIsStable(t *testing.T) {
	t.Parallel()

	peaks := []SpectralPeak{
		{Bin: 1, Frequency: 100, Value: 2},
		{Bin: 3, Frequency: 300, Value: 5},
		{Bin: 5, Frequency: 500, Value: 2},
	}
	ranked := RankPeaks(peaks)
	if ranked[0].Bin != 3 || ranked[1].Bin != 1 || ranked[2].Bin != 5 {
		t.Fatalf("RankPeaks order = %+v", ranked)
	}
	if peaks[0].Bin != 1 {
		t.Fatal("RankPeaks mutated its input")
	}
}

func TestMeanPeakSpacing(t *testing.T) {
	t.Parallel()

	peaks := []SpectralPeak{{Frequency: 100}, {Frequency: 400}, {Frequency: 1000}}
	if got := MeanPeakSpacing(peaks); got != 450 {
		t.Fatalf("MeanPeakSpacing = %v, want 450", got)
	}
	if got := MeanPeakSpacing(peaks[:1]); got != 0 {
		t.Fatalf("single peak spacing = %v, want 0", got)
	}
}

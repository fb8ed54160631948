package harmonic

import (
	"sort"
)

// SpectralPeak is a local maximum in a spectrum-like array
type SpectralPeak struct {
	Bin       int     `json:"bin"`
	Frequency float64 `json:"frequency"`
	Value     float64 `json:"value"`
}

// FindLocalMaxima returns every index i with values[i] strictly greater than
// both neighbours and values[i] >= threshold, in ascending index order. The
// first and last element are never peaks.
func FindLocalMaxima(values []float64, threshold float64) []int {
	peaks := make([]int, 0)
	for i := 1; i < len(values)-1; i++ {
		v := values[i]
		if v > values[i-1] && v > values[i+1] && v >= threshold {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// FindPeaks turns the local maxima of values into SpectralPeaks using the
// matching frequency axis
func FindPeaks(values, frequencies []float64, threshold float64) []SpectralPeak {
	idx := FindLocalMaxima(values, threshold)
	peaks := make([]SpectralPeak, 0, len(idx))
	for _, i := range idx {
		freq := 0.0
		if i < len(frequencies) {
			freq = frequencies[i]
		}
		peaks = append(peaks, SpectralPeak{Bin: i, Frequency: freq, Value: values[i]})
	}
	return peaks
}

// RankPeaks orders peaks by value, strongest first. The sort is stable so
// equal values keep ascending frequency order.
func RankPeaks(peaks []SpectralPeak) []SpectralPeak {
	ranked := make([]SpectralPeak, len(peaks))
	copy(ranked, peaks)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	return ranked
}

// MeanPeakSpacing returns the mean absolute frequency gap between consecutive
// peaks, or 0 when fewer than two peaks exist
func MeanPeakSpacing(peaks []SpectralPeak) float64 {
	if len(peaks) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(peaks); i++ {
		gap := peaks[i].Frequency - peaks[i-1].Frequency
		if gap < 0 {
			gap = -gap
		}
		total += gap
	}
	return total / float64(len(peaks)-1)
}

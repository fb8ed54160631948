package stats

import (
	"fmt"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

// CorrelationResult holds an autocorrelation curve and its strongest peak
type CorrelationResult struct {
	Correlations []float64 `json:"correlations"` // indexed by lag - MinLag
	Lags         []int     `json:"lags"`

	PeakCorrelation float64 `json:"peak_correlation"`
	PeakLag         float64 `json:"peak_lag"` // parabolically refined, 0 when no peak
	PeakIndex       int     `json:"peak_index"`
}

// AutoCorrelation computes the biased, energy-normalized autocorrelation
//
//	r(τ) = Σ x[i]·x[i+τ] / Σ x[i]²
//
// over a bounded lag range. The bias makes r fall off with τ, so the first
// period wins over its multiples.
//
// Reference: Rabiner, L.R. (1977). "On the use of autocorrelation analysis for pitch detection"
type AutoCorrelation struct {
	minLag int
	maxLag int
}

// NewAutoCorrelation creates an autocorrelation calculator for lags in [minLag, maxLag]
func NewAutoCorrelation(minLag, maxLag int) *AutoCorrelation {
	if minLag < 1 {
		minLag = 1
	}
	if maxLag < minLag {
		maxLag = minLag
	}
	return &AutoCorrelation{minLag: minLag, maxLag: maxLag}
}

// Compute calculates the autocorrelation curve and locates its strongest local
// maximum whose correlation is at least threshold
func (ac *AutoCorrelation) Compute(signal []float64, threshold float64) (*CorrelationResult, error) {
	if len(signal) < 2 {
		return nil, fmt.Errorf("signal too short for autocorrelation: %d samples", len(signal))
	}

	energy := floats.Dot(signal, signal)
	maxLag := min(ac.maxLag, len(signal)-1)
	if maxLag < ac.minLag {
		return nil, fmt.Errorf("signal length %d cannot cover minimum lag %d", len(signal), ac.minLag)
	}

	count := maxLag - ac.minLag + 1
	result := &CorrelationResult{
		Correlations: make([]float64, count),
		Lags:         make([]int, count),
		PeakIndex:    -1,
	}

	for i := range count {
		lag := ac.minLag + i
		result.Lags[i] = lag
		if energy > 0 {
			result.Correlations[i] = floats.Dot(signal[:len(signal)-lag], signal[lag:]) / energy
		}
	}

	for i := 1; i < count-1; i++ {
		c := result.Correlations[i]
		if c < threshold || c <= result.Correlations[i-1] || c <= result.Correlations[i+1] {
			continue
		}
		if result.PeakIndex < 0 || c > result.PeakCorrelation {
			result.PeakIndex = i
			result.PeakCorrelation = c
		}
	}

	if result.PeakIndex >= 0 {
		offset := common.ParabolicPeak(result.Correlations, result.PeakIndex)
		result.PeakLag = float64(result.Lags[result.PeakIndex]) + offset
	}

	return result, nil
}

// EstimateFrequency returns sampleRate/peakLag for the strongest qualifying
// peak, or 0 when none is found
func (ac *AutoCorrelation) EstimateFrequency(signal []float64, sampleRate int, threshold float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	result, err := ac.Compute(signal, threshold)
	if err != nil || result.PeakLag <= 0 {
		return 0
	}
	return float64(sampleRate) / result.PeakLag
}

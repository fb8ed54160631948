package tonal

import (
	"github.com/RyanBlaney/sonido-voz/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/algorithms/stats"
)

// PitchDetectionMethod records which path produced an estimate
type PitchDetectionMethod int

const (
	MethodNone PitchDetectionMethod = iota
	FrequencyDomainHPS
	AutocorrelationACF
)

func (m PitchDetectionMethod) String() string {
	switch m {
	case FrequencyDomainHPS:
		return "hps"
	case AutocorrelationACF:
		return "acf"
	default:
		return "none"
	}
}

// PitchCandidate represents a potential pitch
type PitchCandidate struct {
	Frequency float64 `json:"frequency"` // Hz
	Bin       int     `json:"bin"`
	HPS       float64 `json:"hps"`      // harmonic product value
	Salience  float64 `json:"salience"` // bin magnitude relative to the strongest bin
}

// PitchDetectionResult is the outcome of one detection call
type PitchDetectionResult struct {
	Pitch      float64              `json:"pitch"` // Hz, 0 when nothing was found
	Method     PitchDetectionMethod `json:"method"`
	Candidates []PitchCandidate     `json:"candidates,omitempty"` // ranked, HPS path only
}

// PitchDetectionParams contains parameters for pitch detection
type PitchDetectionParams struct {
	// Harmonic product spectrum
	NumHarmonics  int     `json:"num_harmonics" yaml:"num_harmonics"`
	Amplification float64 `json:"amplification" yaml:"amplification"` // keeps the product away from underflow
	MinSalience   float64 `json:"min_salience" yaml:"min_salience"`   // candidate magnitude / strongest magnitude

	// Plausible voice band, preferred over stronger out-of-band candidates
	VoiceBandMin float64 `json:"voice_band_min" yaml:"voice_band_min"`
	VoiceBandMax float64 `json:"voice_band_max" yaml:"voice_band_max"`

	// Frames shorter than this use the autocorrelation path
	ShortFrameSamples int     `json:"short_frame_samples" yaml:"short_frame_samples"`
	AutocorrThreshold float64 `json:"autocorr_threshold" yaml:"autocorr_threshold"`

	Spectral spectral.AnalyzerParams `json:"spectral" yaml:"spectral"`
}

// DefaultPitchDetectionParams returns tuned defaults for speech. The values
// are empirical and meant to be adjusted through configuration.
func DefaultPitchDetectionParams() PitchDetectionParams {
	return PitchDetectionParams{
		NumHarmonics:      3,
		Amplification:     1e4,
		MinSalience:       0.1,
		VoiceBandMin:      50,
		VoiceBandMax:      500,
		ShortFrameSamples: 1024,
		AutocorrThreshold: 0.3,
		Spectral:          spectral.DefaultAnalyzerParams(),
	}
}

// PitchDetector estimates one fundamental frequency per block using the
// harmonic product spectrum, falling back to autocorrelation for short frames.
//
// References:
// - Schroeder, M.R. (1968). "Period histogram and product spectrum"
// - Rabiner, L.R. (1977). "On the use of autocorrelation analysis for pitch detection"
type PitchDetector struct {
	params   PitchDetectionParams
	analyzer *spectral.Analyzer
	hps      *harmonic.HarmonicProduct
}

// NewPitchDetector creates a pitch detector with the given parameters
func NewPitchDetector(params PitchDetectionParams) *PitchDetector {
	return &PitchDetector{
		params:   params,
		analyzer: spectral.NewAnalyzer(params.Spectral),
		hps:      harmonic.NewHarmonicProduct(params.NumHarmonics, params.Amplification),
	}
}

// Params returns the detector parameters
func (pd *PitchDetector) Params() PitchDetectionParams {
	return pd.params
}

// DetectPitch returns the fundamental frequency in Hz, or 0 when no pitch is found
func (pd *PitchDetector) DetectPitch(signal []float64, sampleRate int) float64 {
	return pd.Detect(signal, sampleRate).Pitch
}

// Detect runs pitch detection and returns the full result
func (pd *PitchDetector) Detect(signal []float64, sampleRate int) PitchDetectionResult {
	if len(signal) < 2 || sampleRate <= 0 {
		return PitchDetectionResult{Method: MethodNone}
	}

	if len(signal) < pd.params.ShortFrameSamples {
		return pd.detectACF(signal, sampleRate)
	}

	spectrum := pd.analyzer.Analyze(signal, sampleRate)
	if spectrum.IsEmpty() {
		return pd.detectACF(signal, sampleRate)
	}

	return pd.detectHPS(spectrum)
}

// detectHPS ranks HPS local maxima and prefers the best one inside the voice band
func (pd *PitchDetector) detectHPS(spectrum spectral.Spectrum) PitchDetectionResult {
	result := PitchDetectionResult{Method: FrequencyDomainHPS}

	strongest := 0.0
	for _, m := range spectrum.Magnitudes {
		if m > strongest {
			strongest = m
		}
	}
	if strongest == 0 {
		return result
	}

	hps := pd.hps.ComputeHPS(spectrum.Magnitudes)
	peaks := harmonic.FindPeaks(hps, spectrum.Frequencies, 0)

	candidates := make([]harmonic.SpectralPeak, 0, len(peaks))
	for _, p := range peaks {
		if spectrum.Magnitudes[p.Bin]/strongest >= pd.params.MinSalience {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return result
	}

	ranked := harmonic.RankPeaks(candidates)
	result.Candidates = make([]PitchCandidate, len(ranked))
	for i, p := range ranked {
		result.Candidates[i] = PitchCandidate{
			Frequency: p.Frequency,
			Bin:       p.Bin,
			HPS:       p.Value,
			Salience:  spectrum.Magnitudes[p.Bin] / strongest,
		}
	}

	for _, c := range result.Candidates {
		if c.Frequency >= pd.params.VoiceBandMin && c.Frequency <= pd.params.VoiceBandMax {
			result.Pitch = c.Frequency
			return result
		}
	}

	result.Pitch = result.Candidates[0].Frequency
	return result
}

func (pd *PitchDetector) detectACF(signal []float64, sampleRate int) PitchDetectionResult {
	result := PitchDetectionResult{Method: AutocorrelationACF}
	if pd.params.VoiceBandMin <= 0 || pd.params.VoiceBandMax <= pd.params.VoiceBandMin {
		return result
	}

	minLag := int(float64(sampleRate) / pd.params.VoiceBandMax)
	maxLag := int(float64(sampleRate)/pd.params.VoiceBandMin) + 1
	ac := stats.NewAutoCorrelation(minLag, maxLag)

	result.Pitch = ac.EstimateFrequency(signal, sampleRate, pd.params.AutocorrThreshold)
	return result
}

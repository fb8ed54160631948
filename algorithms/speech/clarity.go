package speech

import (
	"math"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/effects"
	"github.com/RyanBlaney/sonido-voz/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
)

const noiseEpsilon = 1e-10

// ClarityParams configures the clarity heuristic
type ClarityParams struct {
	// Noise estimate: samples of a noise-reduced copy below the floor
	NoiseReductionAmount float64                    `json:"noise_reduction_amount" yaml:"noise_reduction_amount"` // percent
	NoiseFloorThreshold  float64                    `json:"noise_floor_threshold" yaml:"noise_floor_threshold"`
	NoiseReducer         effects.NoiseReducerParams `json:"noise_reducer" yaml:"noise_reducer"`

	// Spectral distinctness
	PeakThreshold  float64 `json:"peak_threshold" yaml:"peak_threshold"`
	SpacingDivisor float64 `json:"spacing_divisor" yaml:"spacing_divisor"` // Hz of mean spacing that scores 1

	SNRWeight      float64 `json:"snr_weight" yaml:"snr_weight"`
	DistinctWeight float64 `json:"distinct_weight" yaml:"distinct_weight"`

	Spectral spectral.AnalyzerParams `json:"spectral" yaml:"spectral"`
}

// DefaultClarityParams returns the default clarity settings
func DefaultClarityParams() ClarityParams {
	return ClarityParams{
		NoiseReductionAmount: 50,
		NoiseFloorThreshold:  0.02,
		NoiseReducer:         effects.DefaultNoiseReducerParams(),
		PeakThreshold:        0.01,
		SpacingDivisor:       1000,
		SNRWeight:            0.6,
		DistinctWeight:       0.4,
		Spectral:             spectral.DefaultAnalyzerParams(),
	}
}

// ClarityResult holds the clarity score and its parts
type ClarityResult struct {
	Clarity      float64 `json:"clarity"`      // [0, 1]
	SNR          float64 `json:"snr"`          // linear power ratio
	SNRScore     float64 `json:"snr_score"`    // [0, 1]
	Distinctness float64 `json:"distinctness"` // [0, 1]
	NumPeaks     int     `json:"num_peaks"`
	PeakSpacing  float64 `json:"peak_spacing"` // Hz
}

// ClarityScorer combines a signal-to-noise estimate with how well separated
// the spectral peaks are
type ClarityScorer struct {
	params   ClarityParams
	reducer  *effects.NoiseReducer
	analyzer *spectral.Analyzer
}

// NewClarityScorer creates a clarity scorer
func NewClarityScorer(params ClarityParams) *ClarityScorer {
	return &ClarityScorer{
		params:   params,
		reducer:  effects.NewNoiseReducer(params.NoiseReducer),
		analyzer: spectral.NewAnalyzer(params.Spectral),
	}
}

// Clarity returns a score in [0, 1]; empty input yields 0
func (cs *ClarityScorer) Clarity(signal []float64, sampleRate int) float64 {
	return cs.Analyze(signal, sampleRate).Clarity
}

// Analyze computes the clarity score with its intermediate values
func (cs *ClarityScorer) Analyze(signal []float64, sampleRate int) ClarityResult {
	if len(signal) == 0 {
		return ClarityResult{}
	}

	result := ClarityResult{}
	result.SNR = cs.estimateSNR(signal)
	result.SNRScore = common.Clamp(math.Log10(result.SNR+1)/2, 0, 1)

	spectrum := cs.analyzer.Analyze(signal, sampleRate)
	peaks := harmonic.FindPeaks(spectrum.Magnitudes, spectrum.Frequencies, cs.params.PeakThreshold)
	result.NumPeaks = len(peaks)
	result.PeakSpacing = harmonic.MeanPeakSpacing(peaks)
	if cs.params.SpacingDivisor > 0 {
		result.Distinctness = common.Clamp(result.PeakSpacing/cs.params.SpacingDivisor, 0, 1)
	}

	score := cs.params.SNRWeight*result.SNRScore + cs.params.DistinctWeight*result.Distinctness
	if !common.IsFinite(score) {
		score = 0
	}
	result.Clarity = common.Clamp(score, 0, 1)
	return result
}

func (cs *ClarityScorer) estimateSNR(signal []float64) float64 {
	power := common.MeanSquare(signal)

	reduced := cs.reducer.Reduce(signal, cs.params.NoiseReductionAmount)
	var floor []float64
	for _, x := range reduced {
		if math.Abs(x) < cs.params.NoiseFloorThreshold {
			floor = append(floor, x*x)
		}
	}
	noise := common.Mean(floor)

	snr := power / (noise + noiseEpsilon)
	if !common.IsFinite(snr) {
		return 0
	}
	return snr
}

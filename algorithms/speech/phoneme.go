package speech

import (
	"fmt"

	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/algorithms/stats"
	"github.com/RyanBlaney/sonido-voz/algorithms/temporal"
)

// FrequencyMethod selects how a frame's frequency is measured
type FrequencyMethod string

const (
	MethodDominantBin     FrequencyMethod = "dominant_bin"
	MethodAutocorrelation FrequencyMethod = "autocorrelation"
)

// PhonemeBand maps frequencies in [Min, Max) to a symbol
type PhonemeBand struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Symbol string  `json:"symbol" yaml:"symbol"`
}

// PhonemeParams configures the coarse phoneme classifier
type PhonemeParams struct {
	FrameDuration   float64         `json:"frame_duration" yaml:"frame_duration"` // seconds
	EnergyThreshold float64         `json:"energy_threshold" yaml:"energy_threshold"`
	Method          FrequencyMethod `json:"method" yaml:"method"`
	Bands           []PhonemeBand   `json:"bands" yaml:"bands"`
	MaxSymbols      int             `json:"max_symbols" yaml:"max_symbols"`
	Fallback        string          `json:"fallback" yaml:"fallback"`

	// Autocorrelation method only
	AutocorrThreshold float64 `json:"autocorr_threshold" yaml:"autocorr_threshold"`

	Spectral spectral.AnalyzerParams `json:"spectral" yaml:"spectral"`
}

// DefaultPhonemeBands returns the vowel-like band table, ordered by frequency
func DefaultPhonemeBands() []PhonemeBand {
	return []PhonemeBand{
		{Min: 80, Max: 300, Symbol: "u"},
		{Min: 300, Max: 600, Symbol: "o"},
		{Min: 600, Max: 1000, Symbol: "a"},
		{Min: 1000, Max: 2000, Symbol: "e"},
		{Min: 2000, Max: 3500, Symbol: "i"},
	}
}

// DefaultPhonemeParams returns the default classifier settings
func DefaultPhonemeParams() PhonemeParams {
	return PhonemeParams{
		FrameDuration:     0.025,
		EnergyThreshold:   0.01,
		Method:            MethodDominantBin,
		Bands:             DefaultPhonemeBands(),
		MaxSymbols:        5,
		Fallback:          "ə",
		AutocorrThreshold: 0.3,
		Spectral:          spectral.DefaultAnalyzerParams(),
	}
}

// Validate checks the method, frame, symbol cap, fallback and band table
func (p PhonemeParams) Validate() error {
	switch p.Method {
	case MethodDominantBin, MethodAutocorrelation:
	default:
		return fmt.Errorf("unknown phoneme frequency method %q", p.Method)
	}
	if p.FrameDuration <= 0 {
		return fmt.Errorf("frame duration must be positive, got %v", p.FrameDuration)
	}
	if p.MaxSymbols < 1 {
		return fmt.Errorf("max symbols must be at least 1, got %d", p.MaxSymbols)
	}
	if p.Fallback == "" {
		return fmt.Errorf("fallback symbol is empty")
	}
	for i, b := range p.Bands {
		if b.Max <= b.Min {
			return fmt.Errorf("band %d (%s): max %v not above min %v", i, b.Symbol, b.Max, b.Min)
		}
		if b.Symbol == "" {
			return fmt.Errorf("band %d has no symbol", i)
		}
	}
	return nil
}

// PhonemeClassifier labels energetic frames by the band their frequency falls in.
// It is a coarse vowel-like heuristic, not a recognizer.
type PhonemeClassifier struct {
	params   PhonemeParams
	analyzer *spectral.Analyzer
}

// NewPhonemeClassifier creates a phoneme classifier
func NewPhonemeClassifier(params PhonemeParams) *PhonemeClassifier {
	return &PhonemeClassifier{
		params:   params,
		analyzer: spectral.NewAnalyzer(params.Spectral),
	}
}

// Classify returns distinct symbols in first-seen order, capped to MaxSymbols.
// When no frame qualifies the fallback symbol is returned.
func (pc *PhonemeClassifier) Classify(signal []float64, sampleRate int) []string {
	symbols := make([]string, 0, max(pc.params.MaxSymbols, 0))
	seen := make(map[string]bool)

	frameSize := int(float64(sampleRate) * pc.params.FrameDuration)
	if sampleRate > 0 && frameSize > 0 {
		energies := temporal.FrameRMS(signal, frameSize, frameSize)

		for i, rms := range energies {
			if len(symbols) >= pc.params.MaxSymbols {
				break
			}
			if rms < pc.params.EnergyThreshold {
				continue
			}

			frame := signal[i*frameSize : (i+1)*frameSize]
			symbol, ok := pc.lookup(pc.frameFrequency(frame, sampleRate))
			if !ok || seen[symbol] {
				continue
			}
			seen[symbol] = true
			symbols = append(symbols, symbol)
		}
	}

	if len(symbols) == 0 {
		return []string{pc.params.Fallback}
	}
	return symbols
}

func (pc *PhonemeClassifier) frameFrequency(frame []float64, sampleRate int) float64 {
	if pc.params.Method == MethodAutocorrelation {
		lo, hi := pc.bandLimits()
		if lo <= 0 || hi <= lo {
			return 0
		}
		ac := stats.NewAutoCorrelation(int(float64(sampleRate)/hi), int(float64(sampleRate)/lo)+1)
		return ac.EstimateFrequency(frame, sampleRate, pc.params.AutocorrThreshold)
	}

	return pc.analyzer.Analyze(frame, sampleRate).DominantFrequency()
}

func (pc *PhonemeClassifier) lookup(freq float64) (string, bool) {
	for _, b := range pc.params.Bands {
		if freq >= b.Min && freq < b.Max {
			return b.Symbol, true
		}
	}
	return "", false
}

// bandLimits returns the lowest Min and highest Max of the band table
func (pc *PhonemeClassifier) bandLimits() (float64, float64) {
	if len(pc.params.Bands) == 0 {
		return 0, 0
	}
	lo, hi := pc.params.Bands[0].Min, pc.params.Bands[0].Max
	for _, b := range pc.params.Bands[1:] {
		lo = min(lo, b.Min)
		hi = max(hi, b.Max)
	}
	return lo, hi
}

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/effects"
	"github.com/RyanBlaney/sonido-voz/algorithms/speech"
	"github.com/RyanBlaney/sonido-voz/algorithms/temporal"
	"github.com/RyanBlaney/sonido-voz/algorithms/tonal"
	"github.com/RyanBlaney/sonido-voz/logging"
	"github.com/RyanBlaney/sonido-voz/transcode"
	"gopkg.in/yaml.v3"
)

// Config is the complete analysis and effects configuration. Every
// threshold in here is a tunable heuristic, not a calibrated constant.
type Config struct {
	Logging   LoggingConfig           `json:"logging" yaml:"logging"`
	Decoder   transcode.DecoderConfig `json:"decoder" yaml:"decoder"`
	Analysis  AnalysisConfig          `json:"analysis" yaml:"analysis"`
	Effects   EffectsConfig           `json:"effects" yaml:"effects"`
	Sentiment SentimentConfig         `json:"sentiment" yaml:"sentiment"`
}

// LoggingConfig selects the logger backend
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

// AnalysisConfig holds the feature extractor parameters
type AnalysisConfig struct {
	Pitch            tonal.PitchDetectionParams `json:"pitch" yaml:"pitch"`
	AmplitudeCeiling float64                    `json:"amplitude_ceiling" yaml:"amplitude_ceiling"`
	Clarity          speech.ClarityParams       `json:"clarity" yaml:"clarity"`
	Phoneme          speech.PhonemeParams       `json:"phoneme" yaml:"phoneme"`
}

// EffectsConfig holds the transform parameters
type EffectsConfig struct {
	NoiseReducer effects.NoiseReducerParams `json:"noise_reducer" yaml:"noise_reducer"`
	PitchShift   effects.PitchShiftParams   `json:"pitch_shift" yaml:"pitch_shift"`
	MaxGain      float64                    `json:"max_gain" yaml:"max_gain"`
}

// Range is an inclusive interval
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies in [Min, Max]
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Distance returns how far v lies outside the range, 0 inside
func (r Range) Distance(v float64) float64 {
	switch {
	case v < r.Min:
		return r.Min - v
	case v > r.Max:
		return v - r.Max
	default:
		return 0
	}
}

// Prototype describes the feature profile of one sentiment label
type Prototype struct {
	Label     string   `json:"label" yaml:"label"`
	Pitch     Range    `json:"pitch" yaml:"pitch"` // Hz
	Amplitude Range    `json:"amplitude" yaml:"amplitude"`
	Clarity   Range    `json:"clarity" yaml:"clarity"`
	Phonemes  []string `json:"phonemes" yaml:"phonemes"`
}

// SentimentWeights is the share each feature contributes to a match score
type SentimentWeights struct {
	Pitch     float64 `json:"pitch" yaml:"pitch"`
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Clarity   float64 `json:"clarity" yaml:"clarity"`
	Phonemes  float64 `json:"phonemes" yaml:"phonemes"`
}

// Sum returns the total weight
func (w SentimentWeights) Sum() float64 {
	return w.Pitch + w.Amplitude + w.Clarity + w.Phonemes
}

// SentimentFalloff is the distance outside a range at which a feature's
// partial credit reaches zero
type SentimentFalloff struct {
	Pitch     float64 `json:"pitch" yaml:"pitch"` // Hz
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Clarity   float64 `json:"clarity" yaml:"clarity"`
}

// SentimentConfig holds the prototype catalog and scoring weights.
// Catalog order breaks ties.
type SentimentConfig struct {
	Weights SentimentWeights `json:"weights" yaml:"weights"`
	Falloff SentimentFalloff `json:"falloff" yaml:"falloff"`
	Catalog []Prototype      `json:"catalog" yaml:"catalog"`
}

// DefaultCatalog returns the built-in prototype table
func DefaultCatalog() []Prototype {
	return []Prototype{
		{Label: "neutral", Pitch: Range{85, 255}, Amplitude: Range{0.1, 0.5}, Clarity: Range{0.3, 0.7}, Phonemes: []string{"ə", "a", "e"}},
		{Label: "happy", Pitch: Range{200, 400}, Amplitude: Range{0.4, 0.8}, Clarity: Range{0.5, 1.0}, Phonemes: []string{"a", "e", "i"}},
		{Label: "sad", Pitch: Range{60, 180}, Amplitude: Range{0, 0.3}, Clarity: Range{0, 0.5}, Phonemes: []string{"u", "o"}},
		{Label: "angry", Pitch: Range{150, 350}, Amplitude: Range{0.6, 1.0}, Clarity: Range{0.4, 0.9}, Phonemes: []string{"a", "o"}},
		{Label: "fear", Pitch: Range{250, 500}, Amplitude: Range{0.2, 0.6}, Clarity: Range{0, 0.5}, Phonemes: []string{"i", "e"}},
		{Label: "disgust", Pitch: Range{80, 200}, Amplitude: Range{0.3, 0.6}, Clarity: Range{0.2, 0.6}, Phonemes: []string{"o", "u", "ə"}},
	}
}

// DefaultSentimentConfig returns the default weights, falloff and catalog
func DefaultSentimentConfig() SentimentConfig {
	return SentimentConfig{
		Weights: SentimentWeights{Pitch: 0.35, Amplitude: 0.30, Clarity: 0.20, Phonemes: 0.15},
		Falloff: SentimentFalloff{Pitch: 200, Amplitude: 0.5, Clarity: 0.5},
		Catalog: DefaultCatalog(),
	}
}

// Default returns the full default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Decoder: *transcode.DefaultDecoderConfig(),
		Analysis: AnalysisConfig{
			Pitch:            tonal.DefaultPitchDetectionParams(),
			AmplitudeCeiling: temporal.DefaultAmplitudeCeiling,
			Clarity:          speech.DefaultClarityParams(),
			Phoneme:          speech.DefaultPhonemeParams(),
		},
		Effects: EffectsConfig{
			NoiseReducer: effects.DefaultNoiseReducerParams(),
			PitchShift:   effects.DefaultPitchShiftParams(),
			MaxGain:      effects.DefaultMaxGain,
		},
		Sentiment: DefaultSentimentConfig(),
	}
}

// Load reads a YAML file and overlays it on the defaults. Keys absent from
// the file keep their default values; lists such as the catalog are replaced
// as a whole.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return config, nil
}

// Parse overlays YAML data on the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of the configuration
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis config: %w", err)
	}
	if err := c.Effects.Validate(); err != nil {
		return fmt.Errorf("effects config: %w", err)
	}
	if err := c.Sentiment.Validate(); err != nil {
		return fmt.Errorf("sentiment config: %w", err)
	}
	return nil
}

// Validate checks the level and format names
func (l LoggingConfig) Validate() error {
	if _, err := logging.ParseLevel(l.Level); err != nil {
		return err
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
}

// Validate checks the analysis parameters
func (a AnalysisConfig) Validate() error {
	if a.AmplitudeCeiling <= 0 {
		return fmt.Errorf("amplitude ceiling must be positive, got %v", a.AmplitudeCeiling)
	}
	if a.Pitch.VoiceBandMin <= 0 || a.Pitch.VoiceBandMax <= a.Pitch.VoiceBandMin {
		return fmt.Errorf("invalid pitch voice band [%v, %v]", a.Pitch.VoiceBandMin, a.Pitch.VoiceBandMax)
	}
	if a.Pitch.NumHarmonics < 1 {
		return fmt.Errorf("pitch num_harmonics must be at least 1, got %d", a.Pitch.NumHarmonics)
	}
	weights := a.Clarity.SNRWeight + a.Clarity.DistinctWeight
	if a.Clarity.SNRWeight < 0 || a.Clarity.DistinctWeight < 0 || math.Abs(weights-1) > 1e-6 {
		return fmt.Errorf("clarity weights must be non-negative and sum to 1, got %v", weights)
	}
	if err := a.Phoneme.Validate(); err != nil {
		return fmt.Errorf("phoneme: %w", err)
	}
	return nil
}

// Validate checks the effect parameters
func (e EffectsConfig) Validate() error {
	if e.MaxGain <= 0 {
		return fmt.Errorf("max gain must be positive, got %v", e.MaxGain)
	}
	if a := e.NoiseReducer.Attenuation; a < 0 || a >= 1 {
		return fmt.Errorf("noise attenuation must be in [0, 1), got %v", a)
	}
	if !common.IsPowerOfTwo(e.PitchShift.WindowSize) || e.PitchShift.WindowSize < 4 {
		return fmt.Errorf("pitch shift window size must be a power of two >= 4, got %d", e.PitchShift.WindowSize)
	}
	if e.PitchShift.HopDivisor < 1 {
		return fmt.Errorf("pitch shift hop divisor must be positive, got %d", e.PitchShift.HopDivisor)
	}
	if e.PitchShift.MaxSemitones <= 0 {
		return fmt.Errorf("pitch shift max semitones must be positive, got %v", e.PitchShift.MaxSemitones)
	}
	return nil
}

var errEmptyCatalog = errors.New("catalog is empty")

// Validate checks weights, falloff spans and catalog entries
func (s SentimentConfig) Validate() error {
	w := s.Weights
	if w.Pitch < 0 || w.Amplitude < 0 || w.Clarity < 0 || w.Phonemes < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if math.Abs(w.Sum()-1) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %v", w.Sum())
	}
	if s.Falloff.Pitch <= 0 || s.Falloff.Amplitude <= 0 || s.Falloff.Clarity <= 0 {
		return fmt.Errorf("falloff spans must be positive: %+v", s.Falloff)
	}
	if len(s.Catalog) == 0 {
		return errEmptyCatalog
	}

	seen := make(map[string]bool, len(s.Catalog))
	for _, p := range s.Catalog {
		if p.Label == "" {
			return errors.New("prototype with empty label")
		}
		if seen[p.Label] {
			return fmt.Errorf("duplicate prototype label %q", p.Label)
		}
		seen[p.Label] = true

		for name, r := range map[string]Range{"pitch": p.Pitch, "amplitude": p.Amplitude, "clarity": p.Clarity} {
			if r.Min > r.Max {
				return fmt.Errorf("prototype %q: %s range [%v, %v] is inverted", p.Label, name, r.Min, r.Max)
			}
		}
	}
	return nil
}

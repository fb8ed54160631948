package voice

import (
	"context"
	"errors"
	"time"

	"github.com/RyanBlaney/sonido-voz/algorithms/effects"
	"github.com/RyanBlaney/sonido-voz/algorithms/speech"
	"github.com/RyanBlaney/sonido-voz/algorithms/temporal"
	"github.com/RyanBlaney/sonido-voz/algorithms/tonal"
	"github.com/RyanBlaney/sonido-voz/logging"
	"github.com/RyanBlaney/sonido-voz/transcode"
	"github.com/RyanBlaney/sonido-voz/voice/config"
)

// Analyzer runs feature extraction and the effects chain over SampleBuffers.
// It holds no per-request state and may be shared between sessions.
type Analyzer struct {
	config *config.Config

	pitch     *tonal.PitchDetector
	amplitude *temporal.AmplitudeMeter
	clarity   *speech.ClarityScorer
	phonemes  *speech.PhonemeClassifier
	sentiment *SentimentClassifier

	noise   *effects.NoiseReducer
	shifter *effects.PitchShifter
	volume  *effects.VolumeAdjuster

	logger logging.Logger
	now    func() time.Time
}

// NewAnalyzer creates an analyzer; a nil config selects the defaults
func NewAnalyzer(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}

	logger := logging.WithFields(logging.Fields{
		"component": "voice_analyzer",
	})

	return &Analyzer{
		config:    cfg,
		pitch:     tonal.NewPitchDetector(cfg.Analysis.Pitch),
		amplitude: temporal.NewAmplitudeMeter(cfg.Analysis.AmplitudeCeiling),
		clarity:   speech.NewClarityScorer(cfg.Analysis.Clarity),
		phonemes:  speech.NewPhonemeClassifier(cfg.Analysis.Phoneme),
		sentiment: NewSentimentClassifier(cfg.Sentiment),
		noise:     effects.NewNoiseReducer(cfg.Effects.NoiseReducer),
		shifter:   effects.NewPitchShifter(cfg.Effects.PitchShift),
		volume:    effects.NewVolumeAdjuster(cfg.Effects.MaxGain),
		logger:    logger,
		now:       time.Now,
	}
}

// SetLogger replaces the analyzer's logger
func (a *Analyzer) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	a.logger = logger.WithFields(logging.Fields{"component": "voice_analyzer"})
}

// Config returns the analyzer configuration
func (a *Analyzer) Config() *config.Config {
	return a.config
}

// Analyze extracts pitch, amplitude, clarity, phonemes and sentiment from buf.
// ctx is checked between stages; an empty buffer yields a zero report.
func (a *Analyzer) Analyze(ctx context.Context, buf *transcode.SampleBuffer) (*FeatureReport, error) {
	logger := a.logger.WithContext(ctx).WithFields(logging.Fields{
		"function":    "Analyze",
		"sample_rate": buf.SampleRate(),
		"samples":     buf.Len(),
	})

	logger.Debug("Starting voice analysis")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	samples := buf.Float64s()
	sampleRate := buf.SampleRate()

	report := &FeatureReport{
		SampleRate: sampleRate,
		Duration:   buf.Duration().Seconds(),
	}

	report.Pitch = a.pitch.DetectPitch(samples, sampleRate)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Amplitude = a.amplitude.Amplitude(samples)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Clarity = a.clarity.Clarity(samples, sampleRate)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Phonemes = a.phonemes.Classify(samples, sampleRate)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Sentiment = a.sentiment.Classify(report.Pitch, report.Amplitude, report.Clarity, report.Phonemes)
	report.Summary = Summarize(report)
	report.AnalyzedAt = a.now()

	logger.Debug("Voice analysis completed", logging.Fields{
		"pitch":      report.Pitch,
		"amplitude":  report.Amplitude,
		"clarity":    report.Clarity,
		"phonemes":   report.Phonemes,
		"sentiment":  report.Sentiment.Label,
		"confidence": report.Sentiment.Confidence,
	})

	return report, nil
}

// ApplyEffects runs noise reduction, pitch shift and volume in that order and
// returns a new buffer at the input sample rate. A failed pitch shift is not
// fatal: the unshifted signal continues down the chain and the result is
// marked Degraded.
func (a *Analyzer) ApplyEffects(ctx context.Context, buf *transcode.SampleBuffer, params EffectParameters) (*EffectsResult, error) {
	logger := a.logger.WithContext(ctx).WithFields(logging.Fields{
		"function":    "ApplyEffects",
		"sample_rate": buf.SampleRate(),
		"samples":     buf.Len(),
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &EffectsResult{
		Applied: EffectParameters{
			NoiseReductionAmount: effects.ClampAmount(params.NoiseReductionAmount),
			PitchShiftSemitones:  a.shifter.ClampSemitones(params.PitchShiftSemitones),
			Gain:                 a.volume.ClampGain(params.Gain),
		},
	}

	logger.Debug("Applying effects", logging.Fields{
		"noise_reduction": result.Applied.NoiseReductionAmount,
		"semitones":       result.Applied.PitchShiftSemitones,
		"gain":            result.Applied.Gain,
	})

	sampleRate := buf.SampleRate()
	signal := a.noise.Reduce(buf.Float64s(), result.Applied.NoiseReductionAmount)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shifted, err := a.shifter.Shift(signal, result.Applied.PitchShiftSemitones, sampleRate)
	switch {
	case err == nil:
		signal = shifted
	case errors.Is(err, effects.ErrShiftFailed):
		logger.Warn("Pitch shift failed, continuing with unshifted audio", logging.Fields{
			"error":     err.Error(),
			"semitones": result.Applied.PitchShiftSemitones,
		})
		result.Degraded = true
		result.ShiftErr = err
	default:
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	signal = a.volume.Adjust(signal, result.Applied.Gain)
	result.Buffer = transcode.FromFloat64(signal, sampleRate)

	logger.Debug("Effects applied", logging.Fields{
		"output_samples": result.Buffer.Len(),
		"degraded":       result.Degraded,
	})

	return result, nil
}

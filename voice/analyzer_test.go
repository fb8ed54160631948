package voice

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-voz/algorithms/effects"
	"github.com/RyanBlaney/sonido-voz/internal/testutil"
	"github.com/RyanBlaney/sonido-voz/logging"
	"github.com/RyanBlaney/sonido-voz/transcode"
	"github.com/RyanBlaney/sonido-voz/voice/config"
)

const testRate = 16000

func quietAnalyzer() *Analyzer {
	a := NewAnalyzer(nil)
	a.SetLogger(&logging.NoOpLogger{})
	return a
}

func catalogLabels() map[string]bool {
	labels := map[string]bool{}
	for _, p := range config.DefaultCatalog() {
		labels[p.Label] = true
	}
	return labels
}

func TestAnalyzeSweepEndToEnd(t *testing.T) {
	t.Parallel()

	sweep := testutil.LinearSweep(100, 3000, testRate, 0.3, testRate)
	report, err := quietAnalyzer().Analyze(context.Background(), transcode.FromFloat64(sweep, testRate))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.Clarity < 0 || report.Clarity > 1 {
		t.Fatalf("clarity = %v", report.Clarity)
	}
	wantAmp := 0.3 / math.Sqrt2 / 0.5
	if math.Abs(report.Amplitude-wantAmp) > 0.01 {
		t.Fatalf("amplitude = %v, want ~%v", report.Amplitude, wantAmp)
	}
	if len(report.Phonemes) == 0 || len(report.Phonemes) > 5 {
		t.Fatalf("phonemes = %v", report.Phonemes)
	}
	if !catalogLabels()[report.Sentiment.Label] {
		t.Fatalf("sentiment %q not in catalog", report.Sentiment.Label)
	}
	if c := report.Sentiment.Confidence; c < 0.5 || c > 1 {
		t.Fatalf("confidence = %v", c)
	}
	if report.Pitch < 0 || report.Summary == "" || report.SampleRate != testRate || report.Duration != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.AnalyzedAt.IsZero() {
		t.Fatal("AnalyzedAt not set")
	}
}

func TestAnalyzeEmptyBuffer(t *testing.T) {
	t.Parallel()

	report, err := quietAnalyzer().Analyze(context.Background(), transcode.FromFloat64(nil, testRate))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.Pitch != 0 || report.Amplitude != 0 || report.Clarity != 0 {
		t.Fatalf("empty report = %+v", report)
	}
	if len(report.Phonemes) != 1 || report.Phonemes[0] != "ə" {
		t.Fatalf("phonemes = %v, want fallback", report.Phonemes)
	}
	if !catalogLabels()[report.Sentiment.Label] {
		t.Fatalf("sentiment %q not in catalog", report.Sentiment.Label)
	}
}

func TestAnalyzeCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buf := transcode.FromFloat64(testutil.DeterministicSine(200, testRate, 0.3, 4096), testRate)
	if _, err := quietAnalyzer().Analyze(ctx, buf); !errors.Is(err, context.Canceled) {
		t.Fatalf("Analyze error = %v, want context.Canceled", err)
	}
	if _, err := quietAnalyzer().ApplyEffects(ctx, buf, DefaultEffectParameters()); !errors.Is(err, context.Canceled) {
		t.Fatalf("ApplyEffects error = %v, want context.Canceled", err)
	}
}

func TestApplyEffectsDefaultsAreIdentity(t *testing.T) {
	t.Parallel()

	in := transcode.FromFloat64(testutil.DeterministicNoise(5, 0.4, 3000), testRate)
	result, err := quietAnalyzer().ApplyEffects(context.Background(), in, DefaultEffectParameters())
	if err != nil {
		t.Fatalf("ApplyEffects() error = %v", err)
	}
	if result.Degraded {
		t.Fatal("unexpected degraded result")
	}
	testutil.RequireSliceNearlyEqual(t, result.Buffer.Float64s(), in.Float64s(), 0)
}

func TestApplyEffectsChain(t *testing.T) {
	t.Parallel()

	in := transcode.FromFloat64(testutil.DeterministicSine(220, testRate, 0.5, testRate), testRate)
	params := EffectParameters{NoiseReductionAmount: 150, PitchShiftSemitones: 12, Gain: 10}

	result, err := quietAnalyzer().ApplyEffects(context.Background(), in, params)
	if err != nil {
		t.Fatalf("ApplyEffects() error = %v", err)
	}

	want := EffectParameters{NoiseReductionAmount: 100, PitchShiftSemitones: 12, Gain: effects.DefaultMaxGain}
	if result.Applied != want {
		t.Fatalf("Applied = %+v, want %+v", result.Applied, want)
	}
	if result.Buffer.SampleRate() != testRate {
		t.Fatalf("sample rate = %d, want %d", result.Buffer.SampleRate(), testRate)
	}
	if result.Buffer.Len() != testRate/2 {
		t.Fatalf("length = %d, want %d", result.Buffer.Len(), testRate/2)
	}
	testutil.RequireInRange(t, result.Buffer.Float64s(), -1, 1)

	// the input buffer is never modified
	testutil.RequireSliceNearlyEqual(t, in.Float64s(), testutil.DeterministicSine(220, testRate, 0.5, testRate), 1e-7)
}

func TestApplyEffectsDegradesOnShiftFailure(t *testing.T) {
	t.Parallel()

	samples := testutil.DeterministicSine(220, testRate, 0.5, 4096)
	samples[200] = math.Inf(1)
	in := transcode.FromFloat64(samples, testRate)

	var logs bytes.Buffer
	a := NewAnalyzer(nil)
	a.SetLogger(logging.NewWriterLogger(&logs))

	result, err := a.ApplyEffects(context.Background(), in, EffectParameters{PitchShiftSemitones: 5, Gain: 1})
	if err != nil {
		t.Fatalf("ApplyEffects() error = %v", err)
	}
	if !result.Degraded || !errors.Is(result.ShiftErr, effects.ErrShiftFailed) {
		t.Fatalf("result = %+v, want degraded with shift error", result)
	}
	if result.Buffer.Len() != in.Len() {
		t.Fatalf("length = %d, want unshifted %d", result.Buffer.Len(), in.Len())
	}
	out := result.Buffer.Float64s()
	testutil.RequireInRange(t, out, -1, 1)
	if out[200] != 1 {
		t.Fatalf("clipped sample = %v, want 1", out[200])
	}
	if !strings.Contains(logs.String(), "Pitch shift failed") {
		t.Fatalf("warning not logged: %q", logs.String())
	}
}

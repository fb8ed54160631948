package voice

import (
	"fmt"
	"strings"
	"time"
)

// FeatureReport is the result of analyzing one buffer
type FeatureReport struct {
	SessionID  string    `json:"session_id,omitempty"`
	Pitch      float64   `json:"pitch"`     // Hz, 0 when none detected
	Amplitude  float64   `json:"amplitude"` // [0, 1]
	Clarity    float64   `json:"clarity"`   // [0, 1]
	Phonemes   []string  `json:"phonemes"`
	Sentiment  Sentiment `json:"sentiment"`
	Summary    string    `json:"summary"`
	SampleRate int       `json:"sample_rate"`
	Duration   float64   `json:"duration_seconds"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Summarize renders a one-paragraph description of the report
func Summarize(r *FeatureReport) string {
	if r == nil {
		return ""
	}

	var b strings.Builder

	if r.Pitch > 0 {
		fmt.Fprintf(&b, "Pitch %.1f Hz (%s register), ", r.Pitch, pitchRegister(r.Pitch))
	} else {
		b.WriteString("No pitch detected, ")
	}
	fmt.Fprintf(&b, "%s at amplitude %.2f, ", loudness(r.Amplitude), r.Amplitude)
	fmt.Fprintf(&b, "%s with clarity %.2f. ", clarityLabel(r.Clarity), r.Clarity)

	if len(r.Phonemes) > 0 {
		fmt.Fprintf(&b, "Phonemes: %s. ", strings.Join(r.Phonemes, ", "))
	}
	fmt.Fprintf(&b, "Sentiment: %s (%.0f%% confidence).", r.Sentiment.Label, r.Sentiment.Confidence*100)

	return b.String()
}

func pitchRegister(hz float64) string {
	switch {
	case hz < 165:
		return "low"
	case hz < 255:
		return "mid"
	default:
		return "high"
	}
}

func loudness(amplitude float64) string {
	switch {
	case amplitude < 0.2:
		return "quiet"
	case amplitude < 0.6:
		return "moderate"
	default:
		return "loud"
	}
}

func clarityLabel(clarity float64) string {
	switch {
	case clarity < 0.4:
		return "muffled"
	case clarity < 0.7:
		return "fair"
	default:
		return "clear"
	}
}

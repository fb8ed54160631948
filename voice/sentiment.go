package voice

import (
	"slices"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/voice/config"
)

// Sentiment is the best-matching prototype label
type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // [0.5, 1]
	Score      float64 `json:"score"`      // weighted match, [0, 1]
}

// SentimentClassifier scores features against a catalog of prototypes.
// The output is a heuristic label, not an emotion recognizer.
type SentimentClassifier struct {
	config config.SentimentConfig
}

// NewSentimentClassifier creates a classifier over the given catalog
func NewSentimentClassifier(cfg config.SentimentConfig) *SentimentClassifier {
	return &SentimentClassifier{config: cfg}
}

// Classify returns the prototype with the highest score. Ties keep the
// prototype declared first.
func (sc *SentimentClassifier) Classify(pitch, amplitude, clarity float64, phonemes []string) Sentiment {
	if len(sc.config.Catalog) == 0 {
		return Sentiment{Label: "neutral", Confidence: 0.5}
	}

	bestIdx := 0
	bestScore := sc.Score(sc.config.Catalog[0], pitch, amplitude, clarity, phonemes)
	for i := 1; i < len(sc.config.Catalog); i++ {
		score := sc.Score(sc.config.Catalog[i], pitch, amplitude, clarity, phonemes)
		if score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	return Sentiment{
		Label:      sc.config.Catalog[bestIdx].Label,
		Confidence: 0.5 + 0.5*bestScore,
		Score:      bestScore,
	}
}

// Score computes how well the features match one prototype, in [0, 1]
func (sc *SentimentClassifier) Score(p config.Prototype, pitch, amplitude, clarity float64, phonemes []string) float64 {
	w := sc.config.Weights
	f := sc.config.Falloff

	score := rangeCredit(p.Pitch, pitch, f.Pitch, w.Pitch) +
		rangeCredit(p.Amplitude, amplitude, f.Amplitude, w.Amplitude) +
		rangeCredit(p.Clarity, clarity, f.Clarity, w.Clarity) +
		w.Phonemes*phonemeOverlap(p.Phonemes, phonemes)

	if !common.IsFinite(score) {
		return 0
	}
	return common.Clamp(score, 0, 1)
}

// rangeCredit gives full weight inside r and decays linearly to 0 at span outside
func rangeCredit(r config.Range, v, span, weight float64) float64 {
	if r.Contains(v) {
		return weight
	}
	if span <= 0 {
		return 0
	}
	return weight * max(0, 1-r.Distance(v)/span)
}

// phonemeOverlap is the fraction of detected symbols that belong to the prototype
func phonemeOverlap(prototype, detected []string) float64 {
	if len(detected) == 0 {
		return 0
	}
	hits := 0
	for _, s := range detected {
		if slices.Contains(prototype, s) {
			hits++
		}
	}
	return float64(hits) / float64(len(detected))
}

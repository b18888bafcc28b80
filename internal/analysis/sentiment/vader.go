package sentiment

import "github.com/jonreiter/govader"

// EstimatorVader is the name of the VADER estimator.
const EstimatorVader = "vader"

// Vader wraps the VADER rule-based analyzer and reports its compound score.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader loads the VADER lexicon.
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Name returns the estimator name.
func (v *Vader) Name() string { return EstimatorVader }

// Polarity returns the normalized compound score in [-1, 1].
func (v *Vader) Polarity(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

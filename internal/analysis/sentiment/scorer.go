// Package sentiment scores free text by averaging several independent
// polarity estimators.
package sentiment

import (
	"strings"

	"github.com/seenimoa/startuplens/internal/analysis/textutil"
	"github.com/seenimoa/startuplens/pkg/models"
)

// Estimator returns a polarity in [-1, 1] for text.
type Estimator interface {
	Name() string
	Polarity(text string) float64
}

// Scorer combines estimators into a SentimentResult. It holds no per-call
// state and is safe for concurrent use.
type Scorer struct {
	estimators []Estimator
}

// NewScorer builds a scorer over the given estimators, in order.
func NewScorer(estimators ...Estimator) *Scorer {
	return &Scorer{estimators: estimators}
}

// NewDefaultScorer returns a scorer over the lexicon and VADER estimators.
func NewDefaultScorer() *Scorer {
	return NewScorer(NewLexicon(), NewVader())
}

// Estimators returns the estimator names in scoring order.
func (s *Scorer) Estimators() []string {
	names := make([]string, len(s.estimators))
	for i, e := range s.estimators {
		names[i] = e.Name()
	}
	return names
}

// Score cleans text and scores it with every estimator. Combined is the
// mean of the estimator scores.
//
// Text that is empty after cleaning is neutral: every estimator score is 0,
// combined is 0, and no estimator runs.
func (s *Scorer) Score(text string) models.SentimentResult {
	cleaned := textutil.CleanText(text)

	res := models.SentimentResult{
		Scores: make(map[string]float64, len(s.estimators)),
		Label:  models.SentimentNeutral,
	}
	if strings.TrimSpace(cleaned) == "" || len(s.estimators) == 0 {
		for _, e := range s.estimators {
			res.Scores[e.Name()] = 0
		}
		return res
	}

	sum := 0.0
	for _, e := range s.estimators {
		p := clamp(e.Polarity(cleaned))
		res.Scores[e.Name()] = p
		sum += p
	}
	res.Combined = clamp(sum / float64(len(s.estimators)))
	res.Label = Label(res.Combined)
	return res
}

// Label maps a combined score to positive (> 0.1), negative (< -0.1) or neutral.
func Label(combined float64) models.SentimentLabel {
	return models.LabelFor(combined)
}

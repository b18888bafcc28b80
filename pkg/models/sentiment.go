package models

import (
	"encoding/json"
	"fmt"
)

// SentimentLabel is the three-way classification of a combined score.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Label thresholds applied to combined scores.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// LabelFor maps a combined score to its label.
func LabelFor(combined float64) SentimentLabel {
	switch {
	case combined > PositiveThreshold:
		return SentimentPositive
	case combined < NegativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// SentimentResult holds the per-estimator polarities (each in [-1, 1]),
// their arithmetic mean and the derived label. In JSON the estimator
// scores sit beside combined and label:
//
//	{"lexicon": 0.5, "vader": 0.62, "combined": 0.56, "label": "positive"}
type SentimentResult struct {
	Scores   map[string]float64
	Combined float64
	Label    SentimentLabel
}

// MarshalJSON flattens Scores into the top-level object.
func (r SentimentResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Scores)+2)
	for name, v := range r.Scores {
		out[name] = v
	}
	out["combined"] = r.Combined
	out["label"] = r.Label
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON: every key other than combined and
// label is read as an estimator score.
func (r *SentimentResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	res := SentimentResult{Scores: make(map[string]float64, len(raw))}
	for key, val := range raw {
		var err error
		switch key {
		case "combined":
			err = json.Unmarshal(val, &res.Combined)
		case "label":
			err = json.Unmarshal(val, &res.Label)
		default:
			var score float64
			err = json.Unmarshal(val, &score)
			res.Scores[key] = score
		}
		if err != nil {
			return fmt.Errorf("sentiment field %q: %w", key, err)
		}
	}
	*r = res
	return nil
}

// Score returns the named estimator's polarity, or 0 if it did not run.
func (r SentimentResult) Score(estimator string) float64 {
	return r.Scores[estimator]
}

package aggregator

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/seenimoa/startuplens/internal/analysis/sentiment"
	"github.com/seenimoa/startuplens/internal/analysis/textutil"
	"github.com/seenimoa/startuplens/pkg/models"
)

// themeStopwords are excluded from common themes on top of the length rule.
var themeStopwords = map[string]bool{"this": true, "that": true, "they": true, "their": true}

// minThemeLength is the exclusive lower bound on theme word length.
const minThemeLength = 3

func distribution(docs []models.AnalyzedDocument) models.SentimentDistribution {
	var d models.SentimentDistribution
	for _, doc := range docs {
		switch doc.Sentiment.Label {
		case models.SentimentPositive:
			d.Positive++
		case models.SentimentNegative:
			d.Negative++
		default:
			d.Neutral++
		}
	}
	return d
}

// averages returns the mean combined score and the mean lexicon polarity.
// docs must not be empty.
func averages(docs []models.AnalyzedDocument) models.AverageScores {
	var combined, polarity float64
	for _, doc := range docs {
		combined += doc.Sentiment.Combined
		polarity += doc.Sentiment.Score(sentiment.EstimatorLexicon)
	}
	n := float64(len(docs))
	return models.AverageScores{Combined: combined / n, Polarity: polarity / n}
}

// commonThemes returns the n most frequent significant words of the cleaned,
// lower-cased text. Ties keep first-occurrence order.
func commonThemes(docs []models.AnalyzedDocument, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, doc := range docs {
		for _, w := range strings.Fields(strings.ToLower(textutil.CleanText(doc.Text))) {
			if utf8.RuneCountInString(w) <= minThemeLength || themeStopwords[w] {
				continue
			}
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if n >= 0 && len(order) > n {
		order = order[:n]
	}
	if order == nil {
		order = []string{}
	}
	return order
}

// representativeQuotes returns up to n documents labelled label with the
// largest |combined| score. Equal magnitudes keep input order.
func representativeQuotes(docs []models.AnalyzedDocument, label models.SentimentLabel, n int) []models.Quote {
	var matched []models.AnalyzedDocument
	for _, doc := range docs {
		if doc.Sentiment.Label == label {
			matched = append(matched, doc)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return math.Abs(matched[i].Sentiment.Combined) > math.Abs(matched[j].Sentiment.Combined)
	})
	if n >= 0 && len(matched) > n {
		matched = matched[:n]
	}

	quotes := make([]models.Quote, len(matched))
	for i, doc := range matched {
		quotes[i] = models.Quote{Text: doc.Text, Score: doc.Sentiment.Combined, Source: doc.Source}
	}
	return quotes
}

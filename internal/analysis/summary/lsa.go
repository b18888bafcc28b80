// Package summary produces extractive summaries with latent semantic
// analysis: sentences are ranked by their weight in the singular vectors of
// the term-sentence matrix.
package summary

import (
	"math"
	"sort"
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"gonum.org/v1/gonum/mat"

	"github.com/seenimoa/startuplens/internal/analysis/textutil"
)

// DefaultSentences is used when Summarize is asked for n <= 0.
const DefaultSentences = 3

const (
	minDimensions  = 3
	reductionRatio = 1.0
	smoothing      = 0.4
)

// Summarizer is immutable and safe for concurrent use.
type Summarizer struct {
	stopwords map[string]bool
}

// New returns a Summarizer with the English stopword list.
func New() *Summarizer {
	return &Summarizer{stopwords: englishStopwords}
}

// Summarize returns up to n of the highest-ranked sentences of text, joined
// by a space in their original order. Text with n or fewer sentences is
// returned sentence by sentence unchanged. It never fails: when no sentence
// has a content word the leading sentences are returned.
func (s *Summarizer) Summarize(text string, n int) string {
	if n <= 0 {
		n = DefaultSentences
	}
	sentences := SplitSentences(text)
	if len(sentences) <= n {
		return strings.Join(sentences, " ")
	}

	ranks, ok := s.rank(sentences)
	if !ok {
		return strings.Join(sentences[:n], " ")
	}

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return ranks[order[a]] > ranks[order[b]] })

	chosen := order[:n]
	sort.Ints(chosen)
	out := make([]string, len(chosen))
	for i, idx := range chosen {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

// rank scores each sentence. ok is false when the matrix is degenerate.
func (s *Summarizer) rank(sentences []string) ([]float64, bool) {
	terms, counts := s.termCounts(sentences)
	if len(terms) == 0 {
		return nil, false
	}

	a := termFrequencyMatrix(terms, counts)

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, false
	}
	sigma := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	dims := max(minDimensions, int(float64(len(sigma))*reductionRatio))
	powered := make([]float64, len(sigma))
	for i, sv := range sigma {
		if i < dims {
			powered[i] = sv * sv
		}
	}

	ranks := make([]float64, len(sentences))
	for i := range sentences {
		sum := 0.0
		for k, ps := range powered {
			vik := v.At(i, k)
			sum += ps * vik * vik
		}
		ranks[i] = math.Sqrt(sum)
	}
	return ranks, true
}

// termCounts returns the sorted vocabulary of stemmed content words and a
// per-sentence count of each term.
func (s *Summarizer) termCounts(sentences []string) ([]string, []map[string]int) {
	vocab := make(map[string]bool)
	counts := make([]map[string]int, len(sentences))
	for i, sent := range sentences {
		counts[i] = make(map[string]int)
		for _, w := range textutil.Words(sent) {
			if s.stopwords[w] {
				continue
			}
			stem := porterstemmer.StemString(w)
			counts[i][stem]++
			vocab[stem] = true
		}
	}

	terms := make([]string, 0, len(vocab))
	for t := range vocab {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms, counts
}

// termFrequencyMatrix builds the terms x sentences matrix, each column
// normalized by its most frequent term and smoothed.
func termFrequencyMatrix(terms []string, counts []map[string]int) *mat.Dense {
	a := mat.NewDense(len(terms), len(counts), nil)
	for col, c := range counts {
		maxFreq := 0
		for _, n := range c {
			maxFreq = max(maxFreq, n)
		}
		for row, term := range terms {
			if maxFreq == 0 {
				continue
			}
			freq := float64(c[term]) / float64(maxFreq)
			a.Set(row, col, smoothing+(1-smoothing)*freq)
		}
	}
	return a
}

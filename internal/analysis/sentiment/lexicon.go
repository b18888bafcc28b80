package sentiment

import (
	"math"
	"strings"

	"github.com/seenimoa/startuplens/internal/analysis/textutil"
)

// EstimatorLexicon is the name of the keyword lexicon estimator.
const EstimatorLexicon = "lexicon"

// polarity weights, in [-1, 1]. Two-word phrases are matched before single words.
var defaultLexicon = map[string]float64{
	// general
	"good": 0.7, "great": 0.8, "excellent": 1.0, "amazing": 0.6, "awesome": 1.0,
	"best": 1.0, "better": 0.5, "love": 0.5, "loved": 0.7, "like": 0.2,
	"happy": 0.8, "impressive": 1.0, "nice": 0.6, "fantastic": 0.4, "wonderful": 1.0,
	"useful": 0.3, "reliable": 0.5, "innovative": 0.5, "exciting": 0.3, "successful": 0.75,
	"bad": -0.7, "worse": -0.4, "worst": -1.0, "terrible": -1.0, "awful": -1.0,
	"hate": -0.8, "poor": -0.4, "disappointing": -0.6, "horrible": -1.0, "useless": -0.5,
	"broken": -0.4, "slow": -0.3, "angry": -0.5, "sad": -0.5, "annoying": -0.8,

	// business and market
	"growth": 0.4, "growing": 0.4, "profit": 0.3, "profitable": 0.5, "surge": 0.7,
	"rally": 0.6, "record": 0.3, "strong": 0.4, "expansion": 0.4, "upgrade": 0.6,
	"outperform": 0.6, "recovery": 0.5, "breakthrough": 0.7, "raises": 0.3, "funding": 0.1,
	"partnership": 0.3, "acquire": 0.2, "launch": 0.2, "beat": 0.5, "exceeds": 0.5,
	"record high": 0.7, "beats estimates": 0.6,
	"decline": -0.5, "loss": -0.4, "losses": -0.4, "crash": -0.8, "plunge": -0.7,
	"slump": -0.6, "weak": -0.4, "downgrade": -0.6, "underperform": -0.6, "layoffs": -0.6,
	"layoff": -0.6, "lawsuit": -0.5, "fraud": -0.8, "scam": -0.8, "investigation": -0.5,
	"breach": -0.6, "bankrupt": -0.8, "bankruptcy": -0.8, "shutdown": -0.6, "concern": -0.3,
	"warning": -0.5, "miss": -0.5, "cut": -0.3, "fall": -0.4, "struggling": -0.5,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true, "neither": true,
	"nor": true, "without": true, "dont": true, "doesnt": true, "didnt": true,
	"isnt": true, "wasnt": true, "arent": true, "cant": true, "cannot": true,
	"wont": true, "shouldnt": true,
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "incredibly": 1.5, "so": 1.2,
	"super": 1.3, "highly": 1.3, "quite": 1.1, "slightly": 0.5, "somewhat": 0.7,
	"barely": 0.4,
}

// negationWindow is how many preceding tokens can flip a hit.
const negationWindow = 3

// Lexicon is a keyword polarity estimator in the style of pattern/TextBlob:
// the score is the mean polarity of matched terms, with a preceding
// intensifier scaling a term and a preceding negation flipping and damping it.
type Lexicon struct {
	words map[string]float64
}

// NewLexicon returns the estimator with the built-in word list.
func NewLexicon() *Lexicon {
	return &Lexicon{words: defaultLexicon}
}

// NewLexiconWith returns an estimator over a custom word list.
func NewLexiconWith(words map[string]float64) *Lexicon {
	return &Lexicon{words: words}
}

// Name returns the estimator name.
func (l *Lexicon) Name() string { return EstimatorLexicon }

// Polarity scores text in [-1, 1]. Text with no known terms scores 0.
func (l *Lexicon) Polarity(text string) float64 {
	tokens := textutil.Words(text)
	for i, tok := range tokens {
		tokens[i] = strings.NewReplacer("'", "", "’", "").Replace(tok)
	}

	sum := 0.0
	hits := 0
	lastHit := -1
	for i := 0; i < len(tokens); i++ {
		weight, span, ok := l.match(tokens, i)
		if !ok {
			continue
		}

		if i > 0 {
			if m, ok := intensifiers[tokens[i-1]]; ok {
				weight *= m
			}
		}
		if negated(tokens, i, lastHit) {
			weight *= -0.5
		}

		sum += clamp(weight)
		hits++
		lastHit = i + span - 1
		i += span - 1
	}

	if hits == 0 {
		return 0
	}
	return clamp(sum / float64(hits))
}

// match looks up the phrase or word starting at tokens[i].
func (l *Lexicon) match(tokens []string, i int) (weight float64, span int, ok bool) {
	if i+1 < len(tokens) {
		if w, ok := l.words[tokens[i]+" "+tokens[i+1]]; ok {
			return w, 2, true
		}
	}
	w, ok := l.words[tokens[i]]
	return w, 1, ok
}

// negated reports whether a negation appears within negationWindow tokens
// before i and after the previous hit.
func negated(tokens []string, i, lastHit int) bool {
	start := max(i-negationWindow, lastHit+1, 0)
	for j := start; j < i; j++ {
		if negations[tokens[j]] {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

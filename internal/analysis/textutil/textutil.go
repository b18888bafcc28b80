// Package textutil holds the text normalization shared by the sentiment,
// summary and theme extraction code.
package textutil

import (
	"regexp"
	"strings"

	"github.com/blevesearch/segment"
)

var (
	urlPattern     = regexp.MustCompile(`(?m)https?\S+|www\S+`)
	handlePattern  = regexp.MustCompile(`[@#]\w+`)
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// CleanText removes URLs, @mentions, #hashtags and punctuation, then
// collapses whitespace.
func CleanText(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = handlePattern.ReplaceAllString(text, "")
	text = nonWordPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Words segments text into lower-cased word tokens (letters, numbers and
// ideographs) using Unicode word boundaries. Punctuation and whitespace
// segments are dropped.
func Words(text string) []string {
	var words []string
	seg := segment.NewWordSegmenter(strings.NewReader(text))
	for seg.Segment() {
		if seg.Type() == segment.None {
			continue
		}
		words = append(words, strings.ToLower(seg.Text()))
	}
	return words
}

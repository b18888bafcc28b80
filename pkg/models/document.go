package models

import "time"

// SourceTag identifies where a document came from.
type SourceTag string

const (
	SourceNews    SourceTag = "news"
	SourceTwitter SourceTag = "twitter"
	SourceReddit  SourceTag = "reddit"
)

// Document is the unit consumed by sentiment analysis.
type Document struct {
	Title     string    `json:"title,omitempty"`
	Text      string    `json:"text"`
	URL       string    `json:"url,omitempty"`
	Publisher string    `json:"publisher,omitempty"` // news outlet name
	CreatedAt time.Time `json:"created_at"`
	Source    SourceTag `json:"source"`
}

// AnalyzedDocument is a Document with its sentiment and optional summary.
type AnalyzedDocument struct {
	Document
	Sentiment SentimentResult `json:"sentiment"`
	Summary   string          `json:"summary,omitempty"`
}

// Article is the news-facing projection of an AnalyzedDocument.
type Article struct {
	Title       string          `json:"title"`
	Source      string          `json:"source"` // publisher
	URL         string          `json:"url"`
	PublishedAt time.Time       `json:"published_at"`
	Sentiment   SentimentResult `json:"sentiment"`
	Summary     string          `json:"summary"`
}

// NewArticle projects an analyzed news document, substituting the sentinel
// for missing text fields.
func NewArticle(d AnalyzedDocument) Article {
	return Article{
		Title:       orSentinel(d.Title),
		Source:      orSentinel(d.Publisher),
		URL:         orSentinel(d.URL),
		PublishedAt: d.CreatedAt,
		Sentiment:   d.Sentiment,
		Summary:     d.Summary,
	}
}

func orSentinel(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

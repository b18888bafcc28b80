package models

import "time"

// FetchStatus distinguishes an empty result from a failed fetch.
type FetchStatus string

const (
	FetchOK     FetchStatus = "ok"
	FetchEmpty  FetchStatus = "empty"
	FetchFailed FetchStatus = "failed"
)

// AggregateReport is the per-entity news rollup.
type AggregateReport struct {
	Query            string         `json:"query"`
	Articles         []Article      `json:"articles"`
	ArticleCount     int            `json:"article_count"`
	AverageSentiment float64        `json:"average_sentiment"`
	Prediction       SentimentLabel `json:"prediction"`
	FetchStatus      FetchStatus    `json:"fetch_status"`
}

// NewsAnalysis pairs the company and industry reports.
type NewsAnalysis struct {
	Company     AggregateReport `json:"company"`
	Industry    AggregateReport `json:"industry"`
	LastUpdated time.Time       `json:"last_updated"`
}

// Empty reports whether neither side found any article.
func (n *NewsAnalysis) Empty() bool {
	return len(n.Company.Articles) == 0 && len(n.Industry.Articles) == 0
}

// SentimentDistribution counts documents per label.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// AverageScores holds the social averages.
type AverageScores struct {
	Combined float64 `json:"combined"`
	Polarity float64 `json:"polarity"` // lexicon estimator only
}

// Quote is a representative excerpt for one polarity class.
type Quote struct {
	Text   string    `json:"text"`
	Score  float64   `json:"score"`
	Source SourceTag `json:"source"`
}

// RepresentativeQuotes groups the strongest quotes by polarity.
type RepresentativeQuotes struct {
	Positive []Quote `json:"positive"`
	Negative []Quote `json:"negative"`
}

// SocialReport is the social-media rollup. NoData is set, and every
// aggregate left at zero, when no mention was found.
type SocialReport struct {
	CompanyName           string                `json:"company_name"`
	NoData                bool                  `json:"no_data"`
	TotalMentions         int                   `json:"total_mentions"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
	AverageScores         AverageScores         `json:"average_scores"`
	Prediction            SentimentLabel        `json:"prediction"`
	CommonThemes          []string              `json:"common_themes"`
	RepresentativeQuotes  RepresentativeQuotes  `json:"representative_quotes"`
	RawData               []AnalyzedDocument    `json:"raw_data"`
	LastUpdated           time.Time             `json:"last_updated"`
}

// NewNoDataReport returns the defined empty social result.
func NewNoDataReport(company string) *SocialReport {
	return &SocialReport{
		CompanyName:  company,
		NoData:       true,
		Prediction:   SentimentNeutral,
		CommonThemes: []string{},
		RepresentativeQuotes: RepresentativeQuotes{
			Positive: []Quote{},
			Negative: []Quote{},
		},
		RawData:     []AnalyzedDocument{},
		LastUpdated: time.Now().UTC(),
	}
}

// ReportUpdate announces a freshly computed report.
type ReportUpdate struct {
	Kind             string         `json:"kind"` // "news" or "social"
	Entity           string         `json:"entity"`
	Industry         string         `json:"industry,omitempty"`
	SnapshotID       int64          `json:"snapshot_id,omitempty"`
	AverageSentiment float64        `json:"average_sentiment"`
	Prediction       SentimentLabel `json:"prediction"`
	Count            int            `json:"count"` // articles or mentions
	UpdatedAt        time.Time      `json:"updated_at"`
}

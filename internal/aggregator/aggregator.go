// Package aggregator fetches documents for an entity, scores and summarizes
// each one, and rolls the results up into news and social reports.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/startuplens/internal/analysis/sentiment"
	"github.com/seenimoa/startuplens/internal/analysis/summary"
	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/internal/datasource"
	"github.com/seenimoa/startuplens/pkg/models"
)

// Options sizes the reports.
type Options struct {
	SummarySentences int
	SampleSize       int
	TopThemes        int
	TopQuotes        int
}

// OptionsFromConfig reads Options from the news and social config sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SummarySentences: cfg.News.SummarySentences,
		SampleSize:       cfg.Social.SampleSize,
		TopThemes:        cfg.Social.TopThemes,
		TopQuotes:        cfg.Social.TopQuotes,
	}
}

// Aggregator runs the news and social pipelines. The scorer and summarizer
// are shared and never mutated.
type Aggregator struct {
	news       datasource.NewsFetcher
	social     []datasource.SocialFetcher
	scorer     *sentiment.Scorer
	summarizer *summary.Summarizer
	opts       Options
	logger     *slog.Logger
	now        func() time.Time
}

// New creates an Aggregator. Social fetchers are merged in the order given.
func New(news datasource.NewsFetcher, social []datasource.SocialFetcher, scorer *sentiment.Scorer, summarizer *summary.Summarizer, opts Options, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		news:       news,
		social:     social,
		scorer:     scorer,
		summarizer: summarizer,
		opts:       opts,
		logger:     logger.With("component", "aggregator"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// NewsProvider returns the configured news fetcher.
func (a *Aggregator) NewsProvider() datasource.NewsFetcher { return a.news }

// SocialProviders returns the configured social fetchers.
func (a *Aggregator) SocialProviders() []datasource.SocialFetcher { return a.social }

// AnalyzeNews builds the company and industry news reports. Fetch failures
// are logged and reported as FetchFailed with no articles; only when both
// sides have no article at all is models.ErrNotFound returned.
func (a *Aggregator) AnalyzeNews(ctx context.Context, company, industry string) (*models.NewsAnalysis, error) {
	company, industry = strings.TrimSpace(company), strings.TrimSpace(industry)
	if company == "" || industry == "" {
		return nil, models.Validationf("company and industry are required")
	}

	var reports [2]models.AggregateReport
	var g errgroup.Group
	for i, query := range []string{company, industry} {
		g.Go(func() error {
			reports[i] = a.newsReport(ctx, query)
			return nil
		})
	}
	_ = g.Wait()

	analysis := &models.NewsAnalysis{
		Company:     reports[0],
		Industry:    reports[1],
		LastUpdated: a.now(),
	}
	if analysis.Empty() {
		return nil, fmt.Errorf("news for %q / %q: %w", company, industry, models.ErrNotFound)
	}
	return analysis, nil
}

func (a *Aggregator) newsReport(ctx context.Context, query string) models.AggregateReport {
	report := models.AggregateReport{
		Query:       query,
		Articles:    []models.Article{},
		Prediction:  models.SentimentNeutral,
		FetchStatus: models.FetchOK,
	}

	docs, err := a.news.FetchNews(ctx, query)
	if err != nil {
		a.logFetchError(a.news.Name(), query, err)
		report.FetchStatus = models.FetchFailed
		return report
	}
	if len(docs) == 0 {
		report.FetchStatus = models.FetchEmpty
		return report
	}

	sum := 0.0
	for _, d := range docs {
		analyzed := models.AnalyzedDocument{
			Document:  d,
			Sentiment: a.scorer.Score(d.Text),
			Summary:   a.summarizer.Summarize(d.Text, a.opts.SummarySentences),
		}
		report.Articles = append(report.Articles, models.NewArticle(analyzed))
		sum += analyzed.Sentiment.Combined
	}
	report.ArticleCount = len(report.Articles)
	report.AverageSentiment = sum / float64(report.ArticleCount)
	report.Prediction = sentiment.Label(report.AverageSentiment)
	return report
}

// AnalyzeSocialMentions merges mentions from every social fetcher and rolls
// them up. With no mention at all the defined no-data report is returned.
func (a *Aggregator) AnalyzeSocialMentions(ctx context.Context, company string) (*models.SocialReport, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, models.Validationf("company is required")
	}

	docs := a.fetchMentions(ctx, company)
	if len(docs) == 0 {
		return models.NewNoDataReport(company), nil
	}

	analyzed := make([]models.AnalyzedDocument, len(docs))
	for i, d := range docs {
		analyzed[i] = models.AnalyzedDocument{Document: d, Sentiment: a.scorer.Score(d.Text)}
	}

	report := &models.SocialReport{
		CompanyName:           company,
		TotalMentions:         len(analyzed),
		SentimentDistribution: distribution(analyzed),
		AverageScores:         averages(analyzed),
		CommonThemes:          commonThemes(analyzed, a.opts.TopThemes),
		RepresentativeQuotes: models.RepresentativeQuotes{
			Positive: representativeQuotes(analyzed, models.SentimentPositive, a.opts.TopQuotes),
			Negative: representativeQuotes(analyzed, models.SentimentNegative, a.opts.TopQuotes),
		},
		RawData:     sample(analyzed, a.opts.SampleSize),
		LastUpdated: a.now(),
	}
	report.Prediction = sentiment.Label(report.AverageScores.Combined)
	return report, nil
}

// fetchMentions queries every social fetcher concurrently and concatenates
// the results in fetcher order.
func (a *Aggregator) fetchMentions(ctx context.Context, company string) []models.Document {
	results := make([][]models.Document, len(a.social))
	var g errgroup.Group
	for i, f := range a.social {
		g.Go(func() error {
			docs, err := f.FetchMentions(ctx, company)
			if err != nil {
				a.logFetchError(f.Name(), company, err)
				return nil
			}
			results[i] = docs
			return nil
		})
	}
	_ = g.Wait()

	var merged []models.Document
	for _, docs := range results {
		merged = append(merged, docs...)
	}
	return merged
}

func (a *Aggregator) logFetchError(provider, query string, err error) {
	if errors.Is(err, datasource.ErrNoCredentials) {
		a.logger.Debug("provider disabled", "provider", provider)
		return
	}
	a.logger.Warn("fetch failed, treating as no documents", "provider", provider, "query", query, "error", err)
}

func sample(docs []models.AnalyzedDocument, n int) []models.AnalyzedDocument {
	if n <= 0 || n > len(docs) {
		n = len(docs)
	}
	out := make([]models.AnalyzedDocument, n)
	copy(out, docs[:n])
	return out
}

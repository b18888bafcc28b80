// Package datasource fetches raw documents for sentiment analysis: news
// articles from NewsAPI or a news RSS search feed, and social-media
// mentions from Twitter and Reddit.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/internal/infra"
	"github.com/seenimoa/startuplens/pkg/models"
)

// NewsFetcher returns recent news documents matching a query.
type NewsFetcher interface {
	// Name returns the provider name used in logs and errors.
	Name() string

	// Enabled reports whether the provider is configured well enough to be called.
	Enabled() bool

	// FetchNews returns up to the configured page size of documents for query.
	FetchNews(ctx context.Context, query string) ([]models.Document, error)
}

// SocialFetcher returns recent social-media mentions of a company.
type SocialFetcher interface {
	Name() string
	Enabled() bool
	FetchMentions(ctx context.Context, company string) ([]models.Document, error)
}

// ErrNoCredentials is returned by providers whose credentials are not configured.
var ErrNoCredentials = errors.New("credentials not configured")

// upstreamError wraps a provider failure, recording the HTTP status when known.
func upstreamError(source, url string, err error) error {
	upErr := &models.UpstreamError{Source: source, URL: url, Err: err}
	var statusErr *infra.HTTPStatusError
	if errors.As(err, &statusErr) {
		upErr.StatusCode = statusErr.StatusCode
	}
	return upErr
}

// credentialsError reports a disabled provider.
func credentialsError(source string) error {
	return fmt.Errorf("%s: %w", source, ErrNoCredentials)
}

// NewNewsFetcher returns the news provider named by cfg.Provider
// ("newsapi" or "rss").
func NewNewsFetcher(cfg config.NewsConfig, client *infra.HTTPClient) (NewsFetcher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", sourceNewsAPI:
		return NewNewsAPI(cfg, client), nil
	case sourceRSS:
		return NewRSSNews(cfg, client), nil
	default:
		return nil, fmt.Errorf("unknown news provider %q", cfg.Provider)
	}
}

// NewSocialFetchers returns the social providers in merge order: Twitter
// first, then Reddit.
func NewSocialFetchers(cfg config.SocialConfig, client *infra.HTTPClient, timeout time.Duration, logger *slog.Logger) []SocialFetcher {
	return []SocialFetcher{
		NewTwitter(cfg.Twitter, client.Standard()),
		NewReddit(cfg.Reddit, timeout, logger),
	}
}

package datasource

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"

	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/pkg/models"
)

const sourceTwitter = "twitter"

// bearerAuthorizer adds an app-only bearer token to every request.
type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// Twitter searches recent tweets through the v2 API.
type Twitter struct {
	cfg    config.TwitterConfig
	client *twitter.Client
	now    func() time.Time
}

// NewTwitter creates a Twitter fetcher on top of httpClient.
func NewTwitter(cfg config.TwitterConfig, httpClient *http.Client) *Twitter {
	return &Twitter{
		cfg: cfg,
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: cfg.BearerToken},
			Client:     httpClient,
			Host:       strings.TrimRight(cfg.BaseURL, "/"),
		},
		now: time.Now,
	}
}

// Name returns the provider name.
func (t *Twitter) Name() string { return sourceTwitter }

// Enabled reports whether a bearer token is configured.
func (t *Twitter) Enabled() bool { return t.cfg.BearerToken != "" }

// FetchMentions returns original English tweets mentioning company from the
// lookback window, capped at the configured maximum.
func (t *Twitter) FetchMentions(ctx context.Context, company string) ([]models.Document, error) {
	if !t.Enabled() {
		return nil, credentialsError(sourceTwitter)
	}

	query := fmt.Sprintf("%s -is:retweet lang:en", company)
	opts := twitter.TweetRecentSearchOpts{
		TweetFields: []twitter.TweetField{twitter.TweetFieldCreatedAt},
		MaxResults:  clampInt(t.cfg.MaxResults, 10, 100),
	}
	if t.cfg.LookbackDays > 0 {
		// The recent search endpoint rejects start times at the very edge of its window.
		opts.StartTime = t.now().Add(-time.Duration(t.cfg.LookbackDays)*24*time.Hour + time.Minute)
	}

	resp, err := t.client.TweetRecentSearch(ctx, query, opts)
	if err != nil {
		return nil, &models.UpstreamError{Source: sourceTwitter, URL: t.client.Host + "/2/tweets/search/recent", Err: err}
	}
	if resp == nil || resp.Raw == nil {
		return []models.Document{}, nil
	}

	docs := make([]models.Document, 0, len(resp.Raw.Tweets))
	for _, tw := range resp.Raw.Tweets {
		if tw == nil {
			continue
		}
		created, _ := time.Parse(time.RFC3339, tw.CreatedAt)
		docs = append(docs, models.Document{
			Text:      tw.Text,
			URL:       "https://twitter.com/i/web/status/" + tw.ID,
			CreatedAt: created,
			Source:    models.SourceTwitter,
		})
	}
	if t.cfg.MaxResults > 0 && len(docs) > t.cfg.MaxResults {
		docs = docs[:t.cfg.MaxResults]
	}
	return docs, nil
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

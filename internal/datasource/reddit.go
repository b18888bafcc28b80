package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/internal/infra"
	"github.com/seenimoa/startuplens/pkg/models"
)

const (
	sourceReddit = "reddit"

	// commentFetches bounds concurrent comment-tree requests.
	commentFetches = 4

	redditWebURL = "https://www.reddit.com"
)

// Reddit searches submissions with app-only OAuth2 and flattens each
// submission's comment tree.
type Reddit struct {
	cfg    config.RedditConfig
	client *http.Client
	logger *slog.Logger
}

// NewReddit creates a Reddit fetcher. Tokens are obtained with the client
// credentials grant and refreshed by the oauth2 transport.
func NewReddit(cfg config.RedditConfig, timeout time.Duration, logger *slog.Logger) *Reddit {
	if logger == nil {
		logger = slog.Default()
	}
	base := &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{userAgent: cfg.UserAgent, base: http.DefaultTransport},
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	client := cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	client.Timeout = timeout

	return &Reddit{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "reddit"),
	}
}

// Name returns the provider name.
func (r *Reddit) Name() string { return sourceReddit }

// Enabled reports whether client credentials are configured.
func (r *Reddit) Enabled() bool { return r.cfg.ClientID != "" && r.cfg.ClientSecret != "" }

// FetchMentions returns, for each matching submission, its title followed
// by every comment in its tree (depth first). A failed comment fetch keeps
// the title and is logged.
func (r *Reddit) FetchMentions(ctx context.Context, company string) ([]models.Document, error) {
	if !r.Enabled() {
		return nil, credentialsError(sourceReddit)
	}

	submissions, err := r.search(ctx, company)
	if err != nil {
		return nil, err
	}

	threads := make([][]models.Document, len(submissions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(commentFetches)
	for i, sub := range submissions {
		threads[i] = []models.Document{sub.document()}
		g.Go(func() error {
			comments, err := r.comments(gctx, sub.ID)
			if err != nil {
				r.logger.Warn("comment fetch failed", "submission", sub.ID, "error", err)
				return nil
			}
			threads[i] = append(threads[i], comments...)
			return nil
		})
	}
	_ = g.Wait()

	docs := []models.Document{}
	for _, t := range threads {
		docs = append(docs, t...)
	}
	return docs, nil
}

// --- Listing wire format ---

type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []redditThing `json:"children"`
	} `json:"data"`
}

type redditThing struct {
	Kind string          `json:"kind"` // t1 comment, t3 submission, more
	Data json.RawMessage `json:"data"`
}

type redditSubmission struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

func (s redditSubmission) document() models.Document {
	return models.Document{
		Text:      s.Title,
		URL:       redditWebURL + s.Permalink,
		CreatedAt: unixTime(s.CreatedUTC),
		Source:    models.SourceReddit,
	}
}

type redditComment struct {
	ID         string          `json:"id"`
	Body       string          `json:"body"`
	Permalink  string          `json:"permalink"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"` // "" or a listing
}

func (r *Reddit) search(ctx context.Context, company string) ([]redditSubmission, error) {
	params := url.Values{}
	params.Set("q", company)
	params.Set("limit", strconv.Itoa(r.cfg.Limit))
	params.Set("sort", "relevance")
	params.Set("raw_json", "1")
	endpoint := fmt.Sprintf("%s/r/%s/search?%s", strings.TrimRight(r.cfg.BaseURL, "/"), url.PathEscape(r.cfg.Subreddit), params.Encode())

	var listing redditListing
	if err := r.getJSON(ctx, endpoint, &listing); err != nil {
		return nil, err
	}

	subs := make([]redditSubmission, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var s redditSubmission
		if err := json.Unmarshal(child.Data, &s); err != nil {
			continue
		}
		subs = append(subs, s)
	}
	if r.cfg.Limit > 0 && len(subs) > r.cfg.Limit {
		subs = subs[:r.cfg.Limit]
	}
	return subs, nil
}

func (r *Reddit) comments(ctx context.Context, submissionID string) ([]models.Document, error) {
	endpoint := fmt.Sprintf("%s/comments/%s?raw_json=1", strings.TrimRight(r.cfg.BaseURL, "/"), url.PathEscape(submissionID))

	// The response is [submission listing, comment listing].
	var listings []redditListing
	if err := r.getJSON(ctx, endpoint, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var docs []models.Document
	flattenComments(listings[1].Data.Children, &docs)
	return docs, nil
}

// flattenComments appends every comment in things depth first. "more"
// placeholders are skipped.
func flattenComments(things []redditThing, out *[]models.Document) {
	for _, thing := range things {
		if thing.Kind != "t1" {
			continue
		}
		var c redditComment
		if err := json.Unmarshal(thing.Data, &c); err != nil {
			continue
		}
		*out = append(*out, models.Document{
			Text:      c.Body,
			URL:       redditWebURL + c.Permalink,
			CreatedAt: unixTime(c.CreatedUTC),
			Source:    models.SourceReddit,
		})

		replies := bytes.TrimSpace(c.Replies)
		if len(replies) == 0 || replies[0] != '{' {
			continue
		}
		var sub redditListing
		if err := json.Unmarshal(replies, &sub); err == nil {
			flattenComments(sub.Data.Children, out)
		}
	}
}

func (r *Reddit) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return &models.UpstreamError{Source: sourceReddit, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return upstreamError(sourceReddit, endpoint, &infra.HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		})
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return upstreamError(sourceReddit, endpoint, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// userAgentTransport sets the User-Agent Reddit requires on every request.
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

func unixTime(sec float64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(sec), 0).UTC()
}

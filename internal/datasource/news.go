package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/internal/infra"
	"github.com/seenimoa/startuplens/pkg/models"
)

const sourceNewsAPI = "newsapi"

// truncationMarker matches the "… [+1234 chars]" suffix NewsAPI appends to content.
var truncationMarker = regexp.MustCompile(`\s*…?\s*\[\+\d+ chars\]\s*$`)

// NewsAPI queries the NewsAPI /v2/everything endpoint.
type NewsAPI struct {
	cfg    config.NewsConfig
	client *infra.HTTPClient
	cache  *infra.Cache[[]models.Document]
	now    func() time.Time
}

// NewNewsAPI creates a NewsAPI fetcher.
func NewNewsAPI(cfg config.NewsConfig, client *infra.HTTPClient) *NewsAPI {
	return &NewsAPI{
		cfg:    cfg,
		client: client,
		cache:  infra.NewCache[[]models.Document](time.Duration(cfg.CacheTTL) * time.Second),
		now:    time.Now,
	}
}

// Name returns the provider name.
func (n *NewsAPI) Name() string { return sourceNewsAPI }

// Enabled reports whether an API key is configured.
func (n *NewsAPI) Enabled() bool { return n.cfg.APIKey != "" }

// PurgeCache drops expired cached query results.
func (n *NewsAPI) PurgeCache() { n.cache.Cleanup() }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

// FetchNews returns English articles from the lookback window, sorted by relevance.
func (n *NewsAPI) FetchNews(ctx context.Context, query string) ([]models.Document, error) {
	if !n.Enabled() {
		return nil, credentialsError(sourceNewsAPI)
	}
	if cached, ok := n.cache.Get(query); ok {
		return cached, nil
	}

	endpoint := n.endpoint(query)
	data, err := n.client.GetBytes(ctx, endpoint, map[string]string{"X-Api-Key": n.cfg.APIKey})
	if err != nil {
		return nil, upstreamError(sourceNewsAPI, endpoint, err)
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, upstreamError(sourceNewsAPI, endpoint, fmt.Errorf("decode response: %w", err))
	}
	if resp.Status != "ok" {
		return nil, upstreamError(sourceNewsAPI, endpoint, fmt.Errorf("%s: %s", resp.Code, resp.Message))
	}

	docs := make([]models.Document, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		text := strings.TrimSpace(truncationMarker.ReplaceAllString(a.Content, ""))
		if text == "" {
			text = strings.TrimSpace(a.Description)
		}
		docs = append(docs, models.Document{
			Title:     a.Title,
			Text:      text,
			URL:       a.URL,
			Publisher: a.Source.Name,
			CreatedAt: a.PublishedAt,
			Source:    models.SourceNews,
		})
	}
	if n.cfg.PageSize > 0 && len(docs) > n.cfg.PageSize {
		docs = docs[:n.cfg.PageSize]
	}

	n.cache.Set(query, docs)
	return docs, nil
}

func (n *NewsAPI) endpoint(query string) string {
	from := n.now().AddDate(0, 0, -n.cfg.LookbackDays).Format("2006-01-02")
	params := url.Values{}
	params.Set("q", query)
	params.Set("from", from)
	params.Set("language", n.cfg.Language)
	params.Set("sortBy", n.cfg.SortBy)
	params.Set("pageSize", strconv.Itoa(n.cfg.PageSize))
	return strings.TrimRight(n.cfg.BaseURL, "/") + "/v2/everything?" + params.Encode()
}

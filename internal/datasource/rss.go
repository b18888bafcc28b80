package datasource

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/internal/infra"
	"github.com/seenimoa/startuplens/pkg/models"
)

const sourceRSS = "rss"

// RSSNews searches a news RSS feed (Google News search by default). It needs
// no credentials.
type RSSNews struct {
	cfg    config.NewsConfig
	client *infra.HTTPClient
	parser *gofeed.Parser
	cache  *infra.Cache[[]models.Document]
	now    func() time.Time
}

// NewRSSNews creates an RSS news fetcher.
func NewRSSNews(cfg config.NewsConfig, client *infra.HTTPClient) *RSSNews {
	return &RSSNews{
		cfg:    cfg,
		client: client,
		parser: gofeed.NewParser(),
		cache:  infra.NewCache[[]models.Document](time.Duration(cfg.CacheTTL) * time.Second),
		now:    time.Now,
	}
}

// Name returns the provider name.
func (r *RSSNews) Name() string { return sourceRSS }

// Enabled reports whether a feed URL is configured.
func (r *RSSNews) Enabled() bool { return r.cfg.RSSURL != "" }

// PurgeCache drops expired cached query results.
func (r *RSSNews) PurgeCache() { r.cache.Cleanup() }

// FetchNews returns feed items published inside the lookback window, in feed order.
func (r *RSSNews) FetchNews(ctx context.Context, query string) ([]models.Document, error) {
	if cached, ok := r.cache.Get(query); ok {
		return cached, nil
	}

	endpoint := r.endpoint(query)
	data, err := r.client.GetBytes(ctx, endpoint, map[string]string{"Accept": "application/rss+xml, application/xml"})
	if err != nil {
		return nil, upstreamError(sourceRSS, endpoint, err)
	}

	feed, err := r.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, upstreamError(sourceRSS, endpoint, fmt.Errorf("parse feed: %w", err))
	}

	cutoff := r.now().AddDate(0, 0, -r.cfg.LookbackDays)
	docs := make([]models.Document, 0, len(feed.Items))
	for _, item := range feed.Items {
		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
			if r.cfg.LookbackDays > 0 && published.Before(cutoff) {
				continue
			}
		}

		title, publisher := splitPublisher(item.Title)
		if publisher == "" {
			publisher = feed.Title
		}
		docs = append(docs, models.Document{
			Title:     title,
			Text:      cleanHTML(item.Description),
			URL:       item.Link,
			Publisher: publisher,
			CreatedAt: published,
			Source:    models.SourceNews,
		})
		if r.cfg.PageSize > 0 && len(docs) == r.cfg.PageSize {
			break
		}
	}

	r.cache.Set(query, docs)
	return docs, nil
}

func (r *RSSNews) endpoint(query string) string {
	q := query
	if r.cfg.LookbackDays > 0 {
		q = fmt.Sprintf("%s when:%dd", query, r.cfg.LookbackDays)
	}
	lang := r.cfg.Language
	if lang == "" {
		lang = "en"
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("hl", lang)
	return r.cfg.RSSURL + "?" + params.Encode()
}

// splitPublisher splits a "Headline - Publisher" title.
func splitPublisher(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

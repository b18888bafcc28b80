package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seenimoa/startuplens/api"
	"github.com/seenimoa/startuplens/internal/aggregator"
	"github.com/seenimoa/startuplens/internal/analysis/sentiment"
	"github.com/seenimoa/startuplens/internal/analysis/summary"
	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/internal/datasource"
	"github.com/seenimoa/startuplens/internal/infra"
	"github.com/seenimoa/startuplens/internal/scraper"
	"github.com/seenimoa/startuplens/internal/store"
	"github.com/seenimoa/startuplens/internal/tracker"
)

// app holds the long-lived components built from config. The scorer and
// summarizer are constructed once here and shared.
type app struct {
	scraper    *scraper.Scraper
	news       datasource.NewsFetcher
	social     []datasource.SocialFetcher
	aggregator *aggregator.Aggregator
	store      *store.Store // nil when history is disabled
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	// Only the profile site is rate limited.
	profileClient := infra.NewHTTPClient(cfg.HTTP.Timeout(), cfg.HTTP.UserAgent, infra.PerSecond(cfg.Scraper.RatePerSecond))
	apiClient := infra.NewHTTPClient(cfg.HTTP.Timeout(), cfg.HTTP.UserAgent, nil)

	news, err := datasource.NewNewsFetcher(cfg.News, apiClient)
	if err != nil {
		return nil, err
	}
	social := datasource.NewSocialFetchers(cfg.Social, apiClient, cfg.HTTP.Timeout(), logger)

	a := &app{
		scraper: scraper.New(cfg.Scraper, profileClient, logger),
		news:    news,
		social:  social,
		aggregator: aggregator.New(news, social,
			sentiment.NewDefaultScorer(), summary.New(),
			aggregator.OptionsFromConfig(cfg), logger),
	}

	if cfg.Store.Path != "" {
		st, err := store.New(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.store = st
	}
	return a, nil
}

// Close releases the store.
func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// serverDeps adapts the app to api.Deps.
func (a *app) serverDeps(logger *slog.Logger) api.Deps {
	deps := api.Deps{
		Scraper:   a.scraper,
		Analyzer:  a.aggregator,
		Providers: api.ProviderStatuses(a.news, a.social),
		Version:   version,
		Logger:    logger,
	}
	if a.store != nil {
		deps.Store = a.store
	}
	return deps
}

// snapshotSaver returns the store as a tracker.SnapshotSaver, or nil.
func (a *app) snapshotSaver() tracker.SnapshotSaver {
	if a.store == nil {
		return nil
	}
	return a.store
}

// purgeCaches drops expired profile and news cache entries.
func (a *app) purgeCaches(context.Context) error {
	a.scraper.PurgeCache()
	if p, ok := a.news.(interface{ PurgeCache() }); ok {
		p.PurgeCache()
	}
	return nil
}

// cachesEnabled reports whether any in-memory cache has a TTL.
func cachesEnabled(cfg *config.Config) bool {
	return cfg.Scraper.CacheTTL > 0 || cfg.News.CacheTTL > 0
}

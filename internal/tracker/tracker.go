package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/pkg/models"
)

// WatchlistJob is the scheduler name of the refresh job.
const WatchlistJob = "watchlist"

// EventReportUpdated is published after each successful refresh.
const EventReportUpdated = "report_updated"

// NewsAnalyzer produces a news analysis for a company/industry pair.
type NewsAnalyzer interface {
	AnalyzeNews(ctx context.Context, company, industry string) (*models.NewsAnalysis, error)
}

// SnapshotSaver persists a news analysis.
type SnapshotSaver interface {
	SaveNews(ctx context.Context, n *models.NewsAnalysis) (int64, error)
}

// Publisher receives refresh events.
type Publisher interface {
	Publish(eventType string, data any)
}

// Tracker re-runs the news analysis for every watchlist entry on schedule.
// The saver and publisher are optional.
type Tracker struct {
	sched     *Scheduler
	schedule  string
	watchlist []config.WatchEntry
	analyzer  NewsAnalyzer
	saver     SnapshotSaver
	publisher Publisher
	logger    *slog.Logger
}

// New creates a Tracker from config. It does not start the scheduler.
func New(cfg config.TrackerConfig, analyzer NewsAnalyzer, saver SnapshotSaver, publisher Publisher, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sched, err := NewScheduler(cfg.Timezone, logger)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		sched:     sched,
		schedule:  cfg.Schedule,
		watchlist: cfg.Watchlist,
		analyzer:  analyzer,
		saver:     saver,
		publisher: publisher,
		logger:    logger.With("component", "tracker"),
	}, nil
}

// Scheduler exposes the underlying scheduler for auxiliary jobs.
func (t *Tracker) Scheduler() *Scheduler { return t.sched }

// Start registers the watchlist job and starts the scheduler.
func (t *Tracker) Start() error {
	if err := t.sched.AddJob(WatchlistJob, t.schedule, t.RefreshAll); err != nil {
		return err
	}
	t.sched.Start()
	t.logger.Info("tracker started", "entries", len(t.watchlist), "schedule", t.schedule)
	return nil
}

// Stop halts the scheduler.
func (t *Tracker) Stop() context.Context { return t.sched.Stop() }

// Jobs lists scheduled jobs.
func (t *Tracker) Jobs() []JobInfo { return t.sched.ListJobs() }

// RefreshAll refreshes every watchlist entry. An entry with no news is
// skipped; other failures are joined into the returned error after all
// entries have been tried.
func (t *Tracker) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, entry := range t.watchlist {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := t.Refresh(ctx, entry); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				t.logger.Info("no news for watchlist entry", "company", entry.Company, "industry", entry.Industry)
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Refresh analyzes one entry, saves a snapshot and publishes the update.
func (t *Tracker) Refresh(ctx context.Context, entry config.WatchEntry) error {
	company, industry := strings.TrimSpace(entry.Company), strings.TrimSpace(entry.Industry)
	analysis, err := t.analyzer.AnalyzeNews(ctx, company, industry)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", company, err)
	}

	update := models.ReportUpdate{
		Kind:             "news",
		Entity:           company,
		Industry:         industry,
		AverageSentiment: analysis.Company.AverageSentiment,
		Prediction:       analysis.Company.Prediction,
		Count:            analysis.Company.ArticleCount,
		UpdatedAt:        analysis.LastUpdated,
	}
	if t.saver != nil {
		id, err := t.saver.SaveNews(ctx, analysis)
		if err != nil {
			return fmt.Errorf("save %s snapshot: %w", company, err)
		}
		update.SnapshotID = id
	}
	if t.publisher != nil {
		t.publisher.Publish(EventReportUpdated, update)
	}

	t.logger.Info("watchlist entry refreshed", "company", company,
		"articles", update.Count, "prediction", update.Prediction)
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/startuplens/api"
	"github.com/seenimoa/startuplens/internal/store"
	"github.com/seenimoa/startuplens/internal/tracker"
)

const cacheCleanupJob = "cache-cleanup"

// commandTimeout bounds one-shot CLI lookups.
const commandTimeout = 3 * time.Minute

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := api.NewServer(cfg, a.serverDeps(logger))

		var sched *tracker.Scheduler
		if cfg.Tracker.Enabled {
			tr, err := tracker.New(cfg.Tracker, a.aggregator, a.snapshotSaver(), srv, logger)
			if err != nil {
				return err
			}
			sched = tr.Scheduler()
			if err := tr.Start(); err != nil {
				return err
			}
			defer tr.Stop()
		}
		if cachesEnabled(cfg) {
			if sched == nil {
				if sched, err = tracker.NewScheduler(cfg.Tracker.Timezone, logger); err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()
			}
			if err := sched.AddJob(cacheCleanupJob, "@every 10m", a.purgeCaches); err != nil {
				return err
			}
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		logger.Info("starting API server", "addr", addr, "version", version)
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

// --- Profile Command ---

var profileCmd = &cobra.Command{
	Use:   "profile [company]",
	Short: "Scrape a company profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		profile, err := a.scraper.ScrapeCompany(ctx, args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, profile)
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [company] [industry]",
	Short: "Analyze news sentiment for a company and its industry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		analysis, err := a.aggregator.AnalyzeNews(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if a.store != nil {
			if _, err := a.store.SaveNews(ctx, analysis); err != nil {
				logger.Warn("saving news snapshot failed", "error", err)
			}
		}
		return printResult(cmd, analysis)
	},
}

// --- Social Command ---

var socialCmd = &cobra.Command{
	Use:   "social [company]",
	Short: "Analyze social-media sentiment for a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		report, err := a.aggregator.AnalyzeSocialMentions(ctx, args[0])
		if err != nil {
			return err
		}
		if a.store != nil && !report.NoData {
			if _, err := a.store.SaveSocial(ctx, report); err != nil {
				logger.Warn("saving social snapshot failed", "error", err)
			}
		}
		return printResult(cmd, report)
	},
}

// --- History Command ---

var errHistoryDisabled = errors.New("history is disabled: set store.path in the config")

var historyCmd = &cobra.Command{
	Use:   "history [entity]",
	Short: "List stored snapshots for a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Path == "" {
			return errHistoryDisabled
		}
		kindFlag, _ := cmd.Flags().GetString("kind")
		kind, err := store.ParseKind(kindFlag)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := store.New(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		snaps, err := st.ListSnapshots(cmd.Context(), args[0], kind, limit)
		if err != nil {
			return err
		}
		return printResult(cmd, api.HistoryResponse{Entity: args[0], Kind: kind, Snapshots: snaps})
	},
}

func init() {
	historyCmd.Flags().String("kind", "", "snapshot kind (news, social); empty for all")
	historyCmd.Flags().Int("limit", 20, "maximum snapshots to list (0 for all)")
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abatilo/dash/internal/config"
	"github.com/abatilo/dash/internal/remote"
	"github.com/abatilo/dash/internal/stats"
	"github.com/abatilo/dash/internal/store"
	"github.com/abatilo/dash/internal/task"
)

const recentCount = 5

// overviewCmd implements 'dash overview'.
func overviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show counts, completion rate and recent tasks",
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := loadConfig()
			ctx := cmd.Context()

			if cfg.Backend != config.BackendRemote {
				tasks, err := getStore(cfg).List(ctx)
				if err != nil {
					printError(err)
				}
				printOutput(formatter.FormatSummary(stats.Summarize(tasks, time.Now()), stats.Recent(tasks, recentCount)))
				return
			}

			client := getClient(cfg)
			s := store.New(remote.NewBacking(client), store.WithLogger(logger))

			var (
				tasks     []task.Task
				analytics stats.Analytics
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				tasks, err = s.List(gctx)
				return err
			})
			g.Go(func() error {
				var err error
				analytics, err = client.Analytics(gctx)
				return err
			})
			if err := g.Wait(); err != nil {
				printError(err)
			}

			summary := stats.Summarize(tasks, time.Now())
			summary.ProductivityScore = analytics.ProductivityScore
			printOutput(formatter.FormatSummary(summary, stats.Recent(tasks, recentCount)))
		},
	}
}

// analyticsCmd implements 'dash analytics'.
func analyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show completion stats and the last week's activity",
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := loadConfig()
			ctx := cmd.Context()

			var analytics stats.Analytics
			if cfg.Backend == config.BackendRemote {
				var err error
				if analytics, err = getClient(cfg).Analytics(ctx); err != nil {
					printError(err)
				}
			} else {
				tasks, err := getStore(cfg).List(ctx)
				if err != nil {
					printError(err)
				}
				analytics = stats.Analyze(tasks, time.Now())
			}
			printOutput(formatter.FormatAnalytics(analytics))
		},
	}
}

// healthCmd implements 'dash health'.
func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the dashboard API is reachable",
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := loadConfig()
			h, err := anonymousClient(cfg).Health(cmd.Context())
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("%s: %s (version %s, %s)", cfg.APIURL, h.Status, h.Version, h.Timestamp)))
		},
	}
}

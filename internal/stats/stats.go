package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/scribeworks/blog-backend/internal/metrics"
	"github.com/scribeworks/blog-backend/internal/repo"
)

// Run starts a background job that refreshes the content gauges from the store
// once immediately and then every minute. The returned cron can be stopped at
// shutdown.
func Run(users *repo.UserRepo, posts *repo.PostRepo) *cron.Cron {
	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		published, err := posts.CountPublished(ctx)
		if err != nil {
			slog.Error("stats: count published posts", "err", err)
			return
		}
		total, err := posts.Count(ctx)
		if err != nil {
			slog.Error("stats: count posts", "err", err)
			return
		}
		userCount, err := users.Count(ctx)
		if err != nil {
			slog.Error("stats: count users", "err", err)
			return
		}

		metrics.SetContentStats(published, total-published, userCount)
	}

	refresh()

	c := cron.New()
	if _, err := c.AddFunc("@every 1m", refresh); err != nil {
		slog.Error("stats: schedule refresh", "err", err)
		return c
	}
	c.Start()
	return c
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

func NewScheduler() (gocron.Scheduler, error) {
	return gocron.NewScheduler()
}

type RenderCleaner interface {
	DeleteExpiredRenders(context.Context, time.Duration) (int64, error)
}

// ScheduleRenderCleanup deletes renders older than retention every interval.
// Runs of the job never overlap.
func ScheduleRenderCleanup(
	s gocron.Scheduler,
	cleaner RenderCleaner,
	interval, retention time.Duration,
) (gocron.Job, error) {
	return s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			deleted, err := cleaner.DeleteExpiredRenders(context.Background(), retention)
			if err != nil {
				slog.Error("err deleting expired renders", "error", err)
				return
			}
			if deleted > 0 {
				slog.Info("expired renders deleted", "count", deleted)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("render-cleanup"),
	)
}
